package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockDesk/app/models"
	"StockDesk/app/remote"
)

// Store is the session-scoped synchronized store: one repository per entity
// kind, the inventory engine, and analytics over the current snapshots. It
// is constructed once per session and injected, never global.
type Store struct {
	Products        *ProductRepository
	Inventory       *InventoryRepository
	Sales           *SaleRepository
	Clients         *ClientRepository
	Payments        *PaymentRepository
	Meetings        *MeetingRepository
	Expiries        *ProductExpiryRepository
	Suppliers       *SupplierRepository
	SalesReturns    *SalesReturnRepository
	PurchaseReturns *PurchaseReturnRepository

	Engine *InventoryEngine

	log *zap.Logger
}

// New wires a store over the given backend.
func New(backend remote.Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		Products:        newProductRepository(backend.Table(remote.TableProducts), log),
		Inventory:       newInventoryRepository(backend.Table(remote.TableInventory), log),
		Sales:           newSaleRepository(backend.Table(remote.TableSales), log),
		Clients:         newClientRepository(backend.Table(remote.TableClients), log),
		Payments:        newPaymentRepository(backend.Table(remote.TablePayments), log),
		Meetings:        newMeetingRepository(backend.Table(remote.TableMeetings), log),
		Expiries:        newProductExpiryRepository(backend.Table(remote.TableProductExpiries), log),
		Suppliers:       newSupplierRepository(backend.Table(remote.TableSuppliers), log),
		SalesReturns:    newSalesReturnRepository(backend.Table(remote.TableSalesReturns), log),
		PurchaseReturns: newPurchaseReturnRepository(backend.Table(remote.TablePurchaseReturns), log),
		log:             log,
	}
	s.Engine = newInventoryEngine(s.Products, s.Inventory, log)
	return s
}

type loader struct {
	table string
	load  func(context.Context) error
}

func (s *Store) loaders() []loader {
	return []loader{
		{remote.TableProducts, s.Products.LoadAll},
		{remote.TableInventory, s.Inventory.LoadAll},
		{remote.TableSales, s.Sales.LoadAll},
		{remote.TableClients, s.Clients.LoadAll},
		{remote.TablePayments, s.Payments.LoadAll},
		{remote.TableMeetings, s.Meetings.LoadAll},
		{remote.TableProductExpiries, s.Expiries.LoadAll},
		{remote.TableSuppliers, s.Suppliers.LoadAll},
		{remote.TableSalesReturns, s.SalesReturns.LoadAll},
		{remote.TablePurchaseReturns, s.PurchaseReturns.LoadAll},
	}
}

// LoadAll refreshes every collection in parallel. Every fetch is attempted
// even when some fail; the first error is reported.
func (s *Store) LoadAll(ctx context.Context) error {
	start := time.Now()
	loaders := s.loaders()

	var wg sync.WaitGroup
	errs := make([]error, len(loaders))
	for i, l := range loaders {
		wg.Add(1)
		go func(i int, l loader) {
			defer wg.Done()
			if err := l.load(ctx); err != nil {
				errs[i] = fmt.Errorf("loading %s: %w", l.table, err)
			}
		}(i, l)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	s.log.Info("store loaded", zap.Duration("took", time.Since(start)))
	return nil
}

// Reload refreshes a single table, as driven by the realtime change feed.
func (s *Store) Reload(ctx context.Context, table string) error {
	for _, l := range s.loaders() {
		if l.table == table {
			return l.load(ctx)
		}
	}
	return fmt.Errorf("unknown table %q", table)
}

// Clear empties every collection, as on session end.
func (s *Store) Clear() {
	s.Products.Clear()
	s.Inventory.Clear()
	s.Sales.Clear()
	s.Clients.Clear()
	s.Payments.Clear()
	s.Meetings.Clear()
	s.Expiries.Clear()
	s.Suppliers.Clear()
	s.SalesReturns.Clear()
	s.PurchaseReturns.Clear()
}

// AddProduct creates the catalog row and seeds its inventory record with the
// initial units in the local bucket.
func (s *Store) AddProduct(ctx context.Context, draft models.Product) (models.Product, error) {
	if draft.ProductID == 0 {
		draft.ProductID = s.Products.NextLegacyID()
	}
	created, err := s.Products.Create(ctx, models.EncodeProduct(draft))
	if err != nil {
		return models.Product{}, err
	}
	rec := models.InventoryRecord{
		ProductID:    created.ProductID,
		ProductName:  created.Name,
		LocalStock:   created.Units,
		ReorderLevel: created.ReorderLevel,
		LastUpdated:  time.Now().UTC(),
	}
	rec.RecomputeCurrent()
	if _, err := s.Inventory.CreateOrUpdate(ctx, rec); err != nil {
		// The catalog row is confirmed; the record catches up on the next
		// restock or reload.
		s.log.Warn("product created but inventory record not seeded",
			zap.String("product", created.ID), zap.Error(err))
	}
	return created, nil
}

// UpdateProduct patches the catalog row and keeps the inventory record's
// local bucket and reorder level in step when those fields change.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	updated, err := s.Products.Update(ctx, id, patch.Encode())
	if err != nil {
		return models.Product{}, err
	}
	if patch.Units == nil && patch.ReorderLevel == nil {
		return updated, nil
	}
	if rec, ok := s.Inventory.FindByProduct(updated.ProductID); ok {
		next := rec
		if patch.Units != nil {
			next.LocalStock = *patch.Units
		}
		if patch.ReorderLevel != nil {
			next.ReorderLevel = *patch.ReorderLevel
		}
		next.RecomputeCurrent()
		next.LastUpdated = time.Now().UTC()
		if _, err := s.Inventory.Update(ctx, rec.ID, models.EncodeInventoryRecord(next)); err != nil {
			s.log.Warn("product updated but inventory record out of step",
				zap.String("product", updated.ID), zap.Error(err))
		}
	}
	return updated, nil
}

// Dashboard computes the headline aggregates from the current snapshots.
func (s *Store) Dashboard(now time.Time) models.DashboardAnalytics {
	return Dashboard(s.Sales.List(), s.Products.List(), s.Inventory.List(), now)
}

// TopProducts ranks the top n product families by revenue.
func (s *Store) TopProducts(n int) []models.ChartPoint {
	return TopProducts(s.Sales.List(), s.Products.List(), n)
}

// RevenueSeries returns the zero-filled daily revenue chart.
func (s *Store) RevenueSeries(now time.Time, days int) []models.ChartPoint {
	return RevenueSeries(s.Sales.List(), now, days)
}
