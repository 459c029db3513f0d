package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidesk/internal/domain"
	"medidesk/internal/repository"
)

func TestProduct_Upsert_CreateDerivesStatus(t *testing.T) {
	ps, _, _ := setup(t)
	cases := []struct {
		qty, min int64
		want     domain.StockStatus
	}{
		{0, 10, domain.StockOutOfStock},
		{0, 0, domain.StockOutOfStock},
		{5, 10, domain.StockLow},
		{10, 10, domain.StockInStock},
		{11, 10, domain.StockInStock},
		{3, 0, domain.StockInStock},
	}
	for _, c := range cases {
		p := mustProduct(t, ps, "X", c.qty, c.min, "1")
		assert.Equal(t, c.want, p.Status(), "qty=%d min=%d", c.qty, c.min)
		assert.NotEmpty(t, p.ID)
		assert.NotNil(t, p.LastRestocked)
	}
}

func TestProduct_Upsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	ps, _, rec := setup(t)
	in := domain.ProductInput{ID: "prod-1", Name: "Amoxicilline", Quantity: 5, MinStock: 40, Price: decimal.NewFromInt(7)}

	first, err := ps.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "prod-1", first.ID)
	second, err := ps.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.Status(), second.Status())
	assert.Equal(t, domain.StockLow, second.Status())
	assert.Equal(t, first.LastRestocked, second.LastRestocked)

	// алерт только при смене статуса
	assert.Len(t, rec.ofType(domain.NotificationPharmacy), 1)

	list, _ := ps.List(ctx, repository.ProductFilter{})
	assert.Len(t, list, 1)
}

func TestProduct_Upsert_UpdateRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	ps, _, rec := setup(t)
	p := mustProduct(t, ps, "A", 100, 10, "1")
	assert.Empty(t, rec.ofType(domain.NotificationPharmacy))

	up, err := ps.Upsert(ctx, domain.ProductInput{ID: p.ID, Name: "A", Quantity: 0, MinStock: 10, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, domain.StockOutOfStock, up.Status())
	alerts := rec.ofType(domain.NotificationPharmacy)
	require.Len(t, alerts, 1)
	assert.Equal(t, p.ID, alerts[0].RelatedID)

	up, err = ps.Upsert(ctx, domain.ProductInput{ID: p.ID, Name: "A", Quantity: 9, MinStock: 10, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, domain.StockLow, up.Status())
}

func TestProduct_Upsert_Invalid(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := setup(t)
	bad := []domain.ProductInput{
		{Name: "", Quantity: 1},
		{Name: "N", Quantity: -1},
		{Name: "N", MinStock: -1},
		{Name: "N", Price: decimal.NewFromInt(-1)},
		{Name: "N", ExpiryDate: "31/12/2026"},
	}
	for _, in := range bad {
		_, err := ps.Upsert(ctx, in)
		require.ErrorIs(t, err, domain.ErrValidation, "%+v", in)
	}

	p := mustProduct(t, ps, "A", 5, 1, "1")
	_, err := ps.Upsert(ctx, domain.ProductInput{ID: p.ID, Name: "A", Quantity: -3})
	require.ErrorIs(t, err, domain.ErrValidation)
	got, _ := ps.Get(ctx, p.ID)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestProduct_Get_Remove(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := setup(t)
	p := mustProduct(t, ps, "A", 5, 1, "1")

	got, err := ps.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, ps.Remove(ctx, p.ID))
	_, err = ps.Get(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, ps.Remove(ctx, p.ID), domain.ErrNotFound)
	require.ErrorIs(t, ps.Remove(ctx, ""), domain.ErrValidation)
}

func TestProduct_LowStock_AndFilters(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := setup(t)
	mustProduct(t, ps, "Aspirin", 100, 10, "1")
	mustProduct(t, ps, "Paracetamol", 5, 10, "1")
	mustProduct(t, ps, "Ibuprofen", 0, 10, "1")

	low, err := ps.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Ibuprofen", low[0].Name)

	list, err := ps.List(ctx, repository.ProductFilter{Query: "pharma"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, _ = ps.List(ctx, repository.ProductFilter{Statuses: []domain.StockStatus{domain.StockInStock}})
	require.Len(t, list, 1)
	assert.Equal(t, "Aspirin", list[0].Name)
}

func TestProduct_Restock(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := setup(t)
	p := mustProduct(t, ps, "A", 0, 10, "1")

	fixed := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	ps.now = func() time.Time { return fixed }

	up, err := ps.Restock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), up.Quantity)
	assert.Equal(t, domain.StockLow, up.Status())
	assert.Equal(t, fixed, *up.LastRestocked)

	up, err = ps.Restock(ctx, p.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.StockInStock, up.Status())

	_, err = ps.Restock(ctx, p.ID, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = ps.Restock(ctx, "missing", 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
