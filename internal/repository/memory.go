package repository

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"medidesk/internal/domain"
)

// MemoryStore объединённое in-memory хранилище: приёмная, аптека, справочник пациентов
type MemoryStore struct {
	mu sync.RWMutex

	receptionByID  map[string]domain.ReceptionEntry
	receptionOrder []string // порядок прибытия
	productsByID   map[string]domain.Product
	ordersByID     map[string]domain.Order
	orderSeq       []string // порядок создания заказов
	patientsByID   map[string]domain.Patient

	newID func() string
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{newID: uuid.NewString}
	m.reset()
	return m
}

// Reset очищает все данные; нужен тестам и повторному сидированию
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *MemoryStore) reset() {
	m.receptionByID = make(map[string]domain.ReceptionEntry)
	m.receptionOrder = nil
	m.productsByID = make(map[string]domain.Product)
	m.ordersByID = make(map[string]domain.Order)
	m.orderSeq = nil
	m.patientsByID = make(map[string]domain.Patient)
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

func (m *MemoryStore) assignID(id string) string {
	if id != "" {
		return id
	}
	return m.newID()
}

var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.assignID(p.ID)
	if _, exists := m.productsByID[p.ID]; exists {
		return domain.NewValidationError("id", "already exists")
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id)
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return domain.NewNotFoundError("product", p.ID)
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return domain.NewNotFoundError("product", id)
	}
	delete(m.productsByID, id)
	return nil
}

// List возвращает товары, отсортированные по названию
func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0, len(m.productsByID))
	for _, p := range m.productsByID {
		if !containsIgnoreCase(p.Name, f.Query) && !containsIgnoreCase(p.Supplier, f.Query) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status()) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MemoryReception репозиторий приёмной поверх общего хранилища
type MemoryReception struct{ store *MemoryStore }

func NewMemoryReception(store *MemoryStore) *MemoryReception { return &MemoryReception{store: store} }

var _ ReceptionRepository = (*MemoryReception)(nil)

func (mr *MemoryReception) Create(ctx context.Context, e *domain.ReceptionEntry) error {
	mr.store.wlock(ctx)
	defer mr.store.wunlock(ctx)
	e.ID = mr.store.assignID(e.ID)
	if _, exists := mr.store.receptionByID[e.ID]; exists {
		return domain.NewValidationError("id", "already exists")
	}
	mr.store.receptionByID[e.ID] = *e
	mr.store.receptionOrder = append(mr.store.receptionOrder, e.ID)
	return nil
}

func (mr *MemoryReception) GetByID(ctx context.Context, id string) (*domain.ReceptionEntry, error) {
	mr.store.rlock(ctx)
	defer mr.store.runlock(ctx)
	e, ok := mr.store.receptionByID[id]
	if !ok {
		return nil, domain.NewNotFoundError("reception entry", id)
	}
	cp := e
	return &cp, nil
}

func (mr *MemoryReception) Update(ctx context.Context, e *domain.ReceptionEntry) error {
	mr.store.wlock(ctx)
	defer mr.store.wunlock(ctx)
	if _, ok := mr.store.receptionByID[e.ID]; !ok {
		return domain.NewNotFoundError("reception entry", e.ID)
	}
	mr.store.receptionByID[e.ID] = *e
	return nil
}

// List отдаёт записи в порядке прибытия
func (mr *MemoryReception) List(ctx context.Context, f ReceptionFilter) ([]domain.ReceptionEntry, error) {
	mr.store.rlock(ctx)
	defer mr.store.runlock(ctx)
	out := make([]domain.ReceptionEntry, 0, len(mr.store.receptionOrder))
	for _, id := range mr.store.receptionOrder {
		e := mr.store.receptionByID[id]
		if !containsIgnoreCase(e.PatientName, f.Query) && !containsIgnoreCase(e.Reason, f.Query) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// MemoryOrders репозиторий заказов
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.assignID(o.ID)
	if _, exists := mo.store.ordersByID[o.ID]; exists {
		return domain.NewValidationError("id", "already exists")
	}
	mo.store.ordersByID[o.ID] = *o
	mo.store.orderSeq = append(mo.store.orderSeq, o.ID)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return domain.NewNotFoundError("order", o.ID)
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

// List отдаёт заказы, новые первыми
func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0, len(mo.store.orderSeq))
	for i := len(mo.store.orderSeq) - 1; i >= 0; i-- {
		o := mo.store.ordersByID[mo.store.orderSeq[i]]
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// MemoryPatients справочник пациентов
type MemoryPatients struct{ store *MemoryStore }

func NewMemoryPatients(store *MemoryStore) *MemoryPatients { return &MemoryPatients{store: store} }

var _ PatientDirectory = (*MemoryPatients)(nil)

func (mp *MemoryPatients) Add(ctx context.Context, p domain.Patient) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	if p.ID == "" {
		return domain.NewValidationError("id", "is required")
	}
	mp.store.patientsByID[p.ID] = p
	return nil
}

func (mp *MemoryPatients) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	p, ok := mp.store.patientsByID[id]
	if !ok {
		return nil, domain.NewNotFoundError("patient", id)
	}
	cp := p
	return &cp, nil
}

// MemoryTx транзакция через блокировку записи общего хранилища. При ошибке
// fn все изменения, сделанные внутри, откатываются.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов уже держит блокировку, откат делает внешний
	if isTx(ctx) {
		return fn(ctx)
	}
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	snap := tx.store.snapshot()
	ctx = context.WithValue(ctx, txKey{}, true)
	if err := fn(ctx); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	receptionByID  map[string]domain.ReceptionEntry
	receptionOrder []string
	productsByID   map[string]domain.Product
	ordersByID     map[string]domain.Order
	orderSeq       []string
	patientsByID   map[string]domain.Patient
}

// snapshot вызывается под блокировкой записи
func (m *MemoryStore) snapshot() storeSnapshot {
	return storeSnapshot{
		receptionByID:  maps.Clone(m.receptionByID),
		receptionOrder: slices.Clone(m.receptionOrder),
		productsByID:   maps.Clone(m.productsByID),
		ordersByID:     maps.Clone(m.ordersByID),
		orderSeq:       slices.Clone(m.orderSeq),
		patientsByID:   maps.Clone(m.patientsByID),
	}
}

func (m *MemoryStore) restore(s storeSnapshot) {
	m.receptionByID = s.receptionByID
	m.receptionOrder = s.receptionOrder
	m.productsByID = s.productsByID
	m.ordersByID = s.ordersByID
	m.orderSeq = s.orderSeq
	m.patientsByID = s.patientsByID
}
