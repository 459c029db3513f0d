package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"medidesk/internal/domain"
	"medidesk/internal/report"
	"medidesk/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Product handlers
type productReq struct {
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	MinStock   int64           `json:"min_stock"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price" swaggertype:"string" example:"2.50"`
	Supplier   string          `json:"supplier"`
	ExpiryDate string          `json:"expiry_date" example:"2027-06-30"`
}

func (r productReq) input(id string) domain.ProductInput {
	return domain.ProductInput{
		ID:         id,
		Name:       r.Name,
		Category:   r.Category,
		Quantity:   r.Quantity,
		MinStock:   r.MinStock,
		Unit:       r.Unit,
		Price:      r.Price,
		Supplier:   r.Supplier,
		ExpiryDate: r.ExpiryDate,
	}
}

// @Summary Create product
// @Tags pharmacy
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /pharmacy/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.Upsert(c, req.input(""))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Create or replace product with the given id
// @Tags pharmacy
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body productReq true "Product"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /pharmacy/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.Upsert(c, req.input(c.Param("id")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Get product by id
// @Tags pharmacy
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /pharmacy/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.Get(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags pharmacy
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /pharmacy/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.products.Remove(c, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags pharmacy
// @Produce json
// @Param q query string false "Name or supplier contains"
// @Param category query string false "Exact category"
// @Param status query string false "Comma separated: in_stock, low_stock, out_of_stock"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, max 100"
// @Success 200 {object} repository.Paginated[domain.Product]
// @Failure 400 {object} map[string]string
// @Router /pharmacy/products [get]
func (s *Server) listProducts(c *gin.Context) {
	f, err := productFilter(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	list, err := s.products.ListPage(c, f, page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func productFilter(c *gin.Context) (repository.ProductFilter, error) {
	f := repository.ProductFilter{Query: c.Query("q"), Category: c.Query("category")}
	for _, v := range splitQuery(c.QueryArray("status")) {
		st := domain.StockStatus(strings.ToLower(v))
		if !st.Valid() {
			return f, domain.NewValidationError("status", "must be one of in_stock, low_stock, out_of_stock")
		}
		f.Statuses = append(f.Statuses, st)
	}
	return f, nil
}

// splitQuery принимает как ?status=a&status=b, так и ?status=a,b
func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// @Summary Products below their reorder threshold
// @Tags pharmacy
// @Produce json
// @Success 200 {array} domain.Product
// @Router /pharmacy/products/low-stock [get]
func (s *Server) lowStock(c *gin.Context) {
	list, err := s.products.LowStock(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Export inventory as xlsx
// @Tags pharmacy
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param q query string false "Name or supplier contains"
// @Param category query string false "Exact category"
// @Param status query string false "Comma separated stock statuses"
// @Success 200 {file} file
// @Router /pharmacy/products/export [get]
func (s *Server) exportProducts(c *gin.Context) {
	f, err := productFilter(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	list, err := s.products.List(c, f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	data, err := report.InventoryWorkbook(list)
	if err != nil {
		s.respondError(c, err)
		return
	}
	name := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

type restockReq struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// @Summary Manual restock
// @Tags pharmacy
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body restockReq true "Units received"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pharmacy/products/{id}/stock [patch]
func (s *Server) restockProduct(c *gin.Context) {
	var req restockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.products.Restock(c, c.Param("id"), req.Quantity)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Pharmacy dashboard counters
// @Tags pharmacy
// @Produce json
// @Success 200 {object} domain.StockSummary
// @Router /pharmacy/summary [get]
func (s *Server) pharmacySummary(c *gin.Context) {
	sum, err := s.orders.Summary(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Order handlers
type createOrderReq struct {
	ProductID        string `json:"product_id"`
	Quantity         int64  `json:"quantity"`
	Supplier         string `json:"supplier"`
	ExpectedDelivery string `json:"expected_delivery" example:"2026-10-25"`
	Notes            string `json:"notes"`
}

// @Summary Place restock order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pharmacy/orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := s.orders.PlaceOrder(c, domain.OrderInput{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		Supplier:         req.Supplier,
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary List orders, newest first
// @Tags orders
// @Produce json
// @Param status query string false "Comma separated: pending, confirmed, delivered, cancelled"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, max 100"
// @Success 200 {object} repository.Paginated[domain.Order]
// @Failure 400 {object} map[string]string
// @Router /pharmacy/orders [get]
func (s *Server) listOrders(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	var f repository.OrderFilter
	for _, v := range splitQuery(c.QueryArray("status")) {
		st, err := domain.ParseOrderStatus(v)
		if err != nil {
			s.respondError(c, err)
			return
		}
		f.Statuses = append(f.Statuses, st)
	}
	list, err := s.orders.ListPage(c, f, page)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Orders awaiting delivery
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /pharmacy/orders/open [get]
func (s *Server) openOrders(c *gin.Context) {
	list, err := s.orders.Open(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Orders not yet confirmed by the supplier
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /pharmacy/orders/pending [get]
func (s *Server) pendingOrders(c *gin.Context) {
	list, err := s.orders.Pending(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /pharmacy/orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.GetOrder(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type orderStatusReq struct {
	Status string `json:"status" binding:"required" example:"confirmed"`
}

// @Summary Advance order status
// @Description Delivery adds the ordered quantity to the product stock
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body orderStatusReq true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /pharmacy/orders/{id}/status [patch]
func (s *Server) updateOrderStatus(c *gin.Context) {
	var req orderStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	to, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	o, err := s.orders.AdvanceStatus(c, c.Param("id"), to)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /pharmacy/orders/{id} [delete]
func (s *Server) cancelOrder(c *gin.Context) {
	o, err := s.orders.CancelOrder(c, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
