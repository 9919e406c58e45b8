package store

import (
	"context"

	"go.uber.org/zap"

	"StockDesk/app/models"
	"StockDesk/app/remote"
)

// ProductRepository resolves product identity three ways: stable string id,
// legacy numeric product id, and base-name lookup for warehouse-tagged
// sibling rows.
type ProductRepository struct {
	*repository[models.Product]
}

func newProductRepository(svc remote.EntityService, log *zap.Logger) *ProductRepository {
	return &ProductRepository{
		repository: newRepository(remote.TableProducts, svc, models.DecodeProduct,
			func(p models.Product) string { return p.ID }, log),
	}
}

// LoadAll additionally assigns sequential legacy ids to rows that arrived
// without one, so legacy numeric lookups always resolve.
func (r *ProductRepository) LoadAll(ctx context.Context) error {
	if err := r.repository.LoadAll(ctx); err != nil {
		return err
	}
	r.coll.mu.Lock()
	defer r.coll.mu.Unlock()
	var max int64
	for _, p := range r.coll.items {
		if p.ProductID > max {
			max = p.ProductID
		}
	}
	for i := range r.coll.items {
		if r.coll.items[i].ProductID == 0 {
			max++
			r.coll.items[i].ProductID = max
		}
	}
	return nil
}

func (r *ProductRepository) FindByID(id string) (models.Product, bool) {
	return r.coll.find(func(p models.Product) bool { return p.ID == id })
}

func (r *ProductRepository) FindByLegacyID(legacyID int64) (models.Product, bool) {
	return r.coll.find(func(p models.Product) bool { return p.ProductID == legacyID })
}

func (r *ProductRepository) FindByName(name string) (models.Product, bool) {
	return r.coll.find(func(p models.Product) bool { return p.Name == name })
}

// FindSibling resolves the warehouse or shop row of a product family by its
// base name.
func (r *ProductRepository) FindSibling(baseName string, warehouse bool) (models.Product, bool) {
	want := baseName
	if warehouse {
		want = models.TagWarehouse(baseName)
	}
	return r.FindByName(want)
}

// NextLegacyID returns one past the highest legacy id currently loaded.
func (r *ProductRepository) NextLegacyID() int64 {
	r.coll.mu.RLock()
	defer r.coll.mu.RUnlock()
	var max int64
	for _, p := range r.coll.items {
		if p.ProductID > max {
			max = p.ProductID
		}
	}
	return max + 1
}

// resolve finds a product by stable id first, then by legacy numeric id
// parsed from the identifier.
func (r *ProductRepository) resolve(productID string) (models.Product, bool) {
	if p, ok := r.FindByID(productID); ok {
		return p, true
	}
	if n := models.ParseLegacyProductID(productID); n != 0 {
		return r.FindByLegacyID(n)
	}
	return models.Product{}, false
}

// SaleRepository records sales. Sales are immutable once confirmed; the only
// mutations are create and delete.
type SaleRepository struct {
	repo *repository[models.Sale]
}

func newSaleRepository(svc remote.EntityService, log *zap.Logger) *SaleRepository {
	return &SaleRepository{
		repo: newRepository(remote.TableSales, svc, models.DecodeSale,
			func(s models.Sale) string { return s.ID }, log),
	}
}

func (r *SaleRepository) List() []models.Sale               { return r.repo.List() }
func (r *SaleRepository) LoadAll(ctx context.Context) error { return r.repo.LoadAll(ctx) }
func (r *SaleRepository) Clear()                            { r.repo.Clear() }

func (r *SaleRepository) Create(ctx context.Context, sale models.Sale) (models.Sale, error) {
	return r.repo.Create(ctx, models.EncodeSale(sale))
}

func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	return r.repo.Delete(ctx, id)
}

// InventoryRepository holds the dedicated stock records.
type InventoryRepository struct {
	*repository[models.InventoryRecord]
}

func newInventoryRepository(svc remote.EntityService, log *zap.Logger) *InventoryRepository {
	return &InventoryRepository{
		repository: newRepository(remote.TableInventory, svc, models.DecodeInventoryRecord,
			func(r models.InventoryRecord) string { return r.ID }, log),
	}
}

func (r *InventoryRepository) FindByProduct(productID int64) (models.InventoryRecord, bool) {
	return r.coll.find(func(rec models.InventoryRecord) bool { return rec.ProductID == productID })
}

// CreateOrUpdate upserts the record for a product, keyed by product id.
func (r *InventoryRepository) CreateOrUpdate(ctx context.Context, rec models.InventoryRecord) (models.InventoryRecord, error) {
	if existing, ok := r.FindByProduct(rec.ProductID); ok {
		return r.Update(ctx, existing.ID, models.EncodeInventoryRecord(rec))
	}
	return r.Create(ctx, models.EncodeInventoryRecord(rec))
}

// ClientRepository, and the repositories below it, are the plain CRUD shape.
type ClientRepository struct {
	*repository[models.Client]
}

func newClientRepository(svc remote.EntityService, log *zap.Logger) *ClientRepository {
	return &ClientRepository{
		repository: newRepository(remote.TableClients, svc, models.DecodeClient,
			func(c models.Client) string { return c.ID }, log),
	}
}

type PaymentRepository struct {
	*repository[models.Payment]
}

func newPaymentRepository(svc remote.EntityService, log *zap.Logger) *PaymentRepository {
	return &PaymentRepository{
		repository: newRepository(remote.TablePayments, svc, models.DecodePayment,
			func(p models.Payment) string { return p.ID }, log),
	}
}

type MeetingRepository struct {
	*repository[models.Meeting]
}

func newMeetingRepository(svc remote.EntityService, log *zap.Logger) *MeetingRepository {
	return &MeetingRepository{
		repository: newRepository(remote.TableMeetings, svc, models.DecodeMeeting,
			func(m models.Meeting) string { return m.ID }, log),
	}
}

type ProductExpiryRepository struct {
	*repository[models.ProductExpiry]
}

func newProductExpiryRepository(svc remote.EntityService, log *zap.Logger) *ProductExpiryRepository {
	return &ProductExpiryRepository{
		repository: newRepository(remote.TableProductExpiries, svc, models.DecodeProductExpiry,
			func(e models.ProductExpiry) string { return e.ID }, log),
	}
}

type SupplierRepository struct {
	*repository[models.Supplier]
}

func newSupplierRepository(svc remote.EntityService, log *zap.Logger) *SupplierRepository {
	return &SupplierRepository{
		repository: newRepository(remote.TableSuppliers, svc, models.DecodeSupplier,
			func(s models.Supplier) string { return s.ID }, log),
	}
}

type SalesReturnRepository struct {
	*repository[models.SalesReturn]
}

func newSalesReturnRepository(svc remote.EntityService, log *zap.Logger) *SalesReturnRepository {
	return &SalesReturnRepository{
		repository: newRepository(remote.TableSalesReturns, svc, models.DecodeSalesReturn,
			func(r models.SalesReturn) string { return r.ID }, log),
	}
}

type PurchaseReturnRepository struct {
	*repository[models.PurchaseReturn]
}

func newPurchaseReturnRepository(svc remote.EntityService, log *zap.Logger) *PurchaseReturnRepository {
	return &PurchaseReturnRepository{
		repository: newRepository(remote.TablePurchaseReturns, svc, models.DecodePurchaseReturn,
			func(r models.PurchaseReturn) string { return r.ID }, log),
	}
}
