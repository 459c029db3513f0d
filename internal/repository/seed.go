package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medidesk/internal/domain"
)

// SeedDemo заполняет хранилище демонстрационными данными для дашбордов
func SeedDemo(ctx context.Context, store *MemoryStore, now time.Time) error {
	tx := NewMemoryTx(store)
	patients := NewMemoryPatients(store)
	reception := NewMemoryReception(store)
	orders := NewMemoryOrders(store)

	return tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, p := range []domain.Patient{
			{ID: "pat-1", FirstName: "Jean", LastName: "Martin"},
			{ID: "pat-2", FirstName: "Marie", LastName: "Dupont"},
			{ID: "pat-3", FirstName: "Pierre", LastName: "Leroy"},
			{ID: "pat-4", FirstName: "Sophie", LastName: "Lambert"},
		} {
			if err := patients.Add(ctx, p); err != nil {
				return err
			}
		}

		arrivals := []struct {
			in     domain.ArrivalInput
			offset time.Duration
			doctor string
			final  domain.ReceptionStatus
		}{
			{in: domain.ArrivalInput{PatientID: "pat-4", PatientName: "Sophie Lambert", Reason: "Consultation de routine", Priority: "low"}, offset: -90 * time.Minute},
			{in: domain.ArrivalInput{PatientID: "pat-1", PatientName: "Jean Martin", Reason: "Suivi cardiaque", Priority: "medium"}, offset: -75 * time.Minute, doctor: "Dr. Sophie Bernard"},
			{in: domain.ArrivalInput{PatientName: "Nouveau patient", Reason: "Douleur thoracique", Priority: "urgent", Notes: "Patient non enregistré"}, offset: -60 * time.Minute},
			{in: domain.ArrivalInput{PatientID: "pat-2", PatientName: "Marie Dupont", Reason: "Retrait résultats", Priority: "low"}, offset: -45 * time.Minute, doctor: "Dr. Sophie Bernard", final: domain.ReceptionCompleted},
		}
		for _, a := range arrivals {
			e, err := domain.NewReceptionEntry(a.in, now.Add(a.offset))
			if err != nil {
				return err
			}
			if a.doctor != "" {
				if err := e.AssignDoctor(a.doctor); err != nil {
					return err
				}
			}
			if a.final == domain.ReceptionCompleted {
				if err := e.Complete(); err != nil {
					return err
				}
			}
			if err := reception.Create(ctx, &e); err != nil {
				return err
			}
		}

		products := []domain.ProductInput{
			{Name: "Paracétamol 500mg", Category: "Antalgiques", Quantity: 15, MinStock: 50, Unit: "boîte", Price: decimal.RequireFromString("2.50"), Supplier: "Pharma Distrib", ExpiryDate: "2026-12-31"},
			{Name: "Amoxicilline 1g", Category: "Antibiotiques", Quantity: 120, MinStock: 40, Unit: "boîte", Price: decimal.RequireFromString("6.80"), Supplier: "MedSupply", ExpiryDate: "2026-06-30"},
			{Name: "Sérum physiologique", Category: "Solutés", Quantity: 0, MinStock: 30, Unit: "flacon", Price: decimal.RequireFromString("1.20"), Supplier: "Pharma Distrib"},
			{Name: "Insuline rapide", Category: "Diabète", Quantity: 25, MinStock: 20, Unit: "stylo", Price: decimal.RequireFromString("18.90"), Supplier: "BioLab", ExpiryDate: "2025-11-15"},
		}
		var first domain.Product
		for i, in := range products {
			p, err := domain.NewProduct(in, now.AddDate(0, 0, -10))
			if err != nil {
				return err
			}
			if err := store.Create(ctx, &p); err != nil {
				return err
			}
			if i == 0 {
				first = p
			}
		}

		o, err := domain.NewOrder(domain.OrderInput{ProductID: first.ID, Quantity: 200, ExpectedDelivery: now.AddDate(0, 0, 3).Format(domain.DateLayout)}, first, now.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		return orders.Create(ctx, &o)
	})
}
