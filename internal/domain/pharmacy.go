package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат календарных дат (срок годности, ожидаемая доставка)
const DateLayout = "2006-01-02"

// StockStatus производный от остатка и порога дозаказа
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLow        StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// StockStatusFor единственное место расчёта статуса наличия
func StockStatusFor(quantity, minStock int64) StockStatus {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case quantity < minStock:
		return StockLow
	default:
		return StockInStock
	}
}

func (s StockStatus) Valid() bool {
	return s == StockInStock || s == StockLow || s == StockOutOfStock
}

// Product товар аптеки. Статус не хранится: Status() всегда считает его
// по текущим Quantity и MinStock.
type Product struct {
	ID            string
	Name          string
	Category      string
	Quantity      int64
	MinStock      int64
	Unit          string
	Price         decimal.Decimal
	Supplier      string
	ExpiryDate    string
	LastRestocked *time.Time
}

// ProductInput редактируемые поля товара
type ProductInput struct {
	ID         string
	Name       string
	Category   string
	Quantity   int64
	MinStock   int64
	Unit       string
	Price      decimal.Decimal
	Supplier   string
	ExpiryDate string
}

func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if in.Quantity < 0 {
		return NewValidationError("quantity", "must be >= 0")
	}
	if in.MinStock < 0 {
		return NewValidationError("min_stock", "must be >= 0")
	}
	if in.Price.IsNegative() {
		return NewValidationError("price", "must be >= 0")
	}
	if in.ExpiryDate != "" {
		if _, err := time.Parse(DateLayout, in.ExpiryDate); err != nil {
			return NewValidationError("expiry_date", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// NewProduct создание считается первым пополнением
func NewProduct(in ProductInput, at time.Time) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	p := Product{ID: in.ID}
	p.assign(in)
	p.LastRestocked = &at
	return p, nil
}

// Apply перезаписывает редактируемые поля
func (p *Product) Apply(in ProductInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	p.assign(in)
	return nil
}

func (p *Product) assign(in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Quantity = in.Quantity
	p.MinStock = in.MinStock
	p.Unit = in.Unit
	p.Price = in.Price
	p.Supplier = strings.TrimSpace(in.Supplier)
	p.ExpiryDate = in.ExpiryDate
}

// Restock приход delta единиц в момент at
func (p *Product) Restock(delta int64, at time.Time) error {
	if delta <= 0 {
		return NewValidationError("quantity", "must be > 0")
	}
	if delta > math.MaxInt64-p.Quantity {
		return NewValidationError("quantity", "stock would exceed the maximum quantity")
	}
	p.Quantity += delta
	p.LastRestocked = &at
	return nil
}

func (p Product) Status() StockStatus {
	return StockStatusFor(p.Quantity, p.MinStock)
}

type productJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Quantity      int64           `json:"quantity"`
	MinStock      int64           `json:"min_stock"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	Supplier      string          `json:"supplier"`
	ExpiryDate    string          `json:"expiry_date,omitempty"`
	Status        StockStatus     `json:"status"`
	LastRestocked *time.Time      `json:"last_restocked,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Quantity:      p.Quantity,
		MinStock:      p.MinStock,
		Unit:          p.Unit,
		Price:         p.Price,
		Supplier:      p.Supplier,
		ExpiryDate:    p.ExpiryDate,
		Status:        p.Status(),
		LastRestocked: p.LastRestocked,
	})
}

// UnmarshalJSON входящий status игнорируется
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:            raw.ID,
		Name:          raw.Name,
		Category:      raw.Category,
		Quantity:      raw.Quantity,
		MinStock:      raw.MinStock,
		Unit:          raw.Unit,
		Price:         raw.Price,
		Supplier:      raw.Supplier,
		ExpiryDate:    raw.ExpiryDate,
		LastRestocked: raw.LastRestocked,
	}
	return nil
}

// OrderStatus жизненный цикл заказа на пополнение
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Open заказ ещё ждёт доставки
func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderConfirmed
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError("status", "must be one of pending, confirmed, delivered, cancelled")
	}
	return st, nil
}

// Order заказ поставщику. ProductName и TotalCost фиксируются при создании
// и не следуют за правками товара.
type Order struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int64           `json:"quantity"`
	Supplier         string          `json:"supplier"`
	OrderDate        time.Time       `json:"order_date"`
	ExpectedDelivery string          `json:"expected_delivery,omitempty"`
	Status           OrderStatus     `json:"status"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Notes            string          `json:"notes,omitempty"`
}

type OrderInput struct {
	ProductID        string
	Quantity         int64
	Supplier         string
	ExpectedDelivery string
	Notes            string
}

func (in OrderInput) Validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return NewValidationError("product_id", "is required")
	}
	if in.Quantity <= 0 {
		return NewValidationError("quantity", "must be > 0")
	}
	if in.ExpectedDelivery != "" {
		if _, err := time.Parse(DateLayout, in.ExpectedDelivery); err != nil {
			return NewValidationError("expected_delivery", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// NewOrder считает стоимость по текущей цене; пустой поставщик берётся из товара
func NewOrder(in OrderInput, product Product, at time.Time) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		supplier = product.Supplier
	}
	return Order{
		ProductID:        product.ID,
		ProductName:      product.Name,
		Quantity:         in.Quantity,
		Supplier:         supplier,
		OrderDate:        at,
		ExpectedDelivery: in.ExpectedDelivery,
		Status:           OrderPending,
		TotalCost:        product.Price.Mul(decimal.NewFromInt(in.Quantity)),
		Notes:            strings.TrimSpace(in.Notes),
	}, nil
}

func (o *Order) Advance(to OrderStatus) error {
	if !o.Status.CanTransition(to) {
		return NewInvalidTransitionError("order", o.ID, string(o.Status), string(to))
	}
	o.Status = to
	return nil
}

// StockSummary счётчики дашборда аптеки
type StockSummary struct {
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
	OpenOrders int `json:"open_orders"`
}
