package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockDesk/app/models"
	"StockDesk/app/remote"
)

// Location names one of the two stock buckets.
type Location string

const (
	LocationWarehouse Location = "warehouse"
	LocationLocal     Location = "local"
)

func (l Location) valid() bool {
	return l == LocationWarehouse || l == LocationLocal
}

// InsufficientStockError reports a transfer that would overdraw the source
// bucket. Nothing is mutated when it is returned.
type InsufficientStockError struct {
	Location  Location
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough %s stock (requested %d, available %d)",
		e.Location, e.Requested, e.Available)
}

// Stock is the resolved bucket view of one product family.
type Stock struct {
	Warehouse int `json:"warehouse"`
	Local     int `json:"local"`
	Current   int `json:"current"`
}

// InventoryEngine reconciles the two stock encodings: dedicated inventory
// records with explicit buckets, and the legacy scheme where warehouse stock
// lives on a separate product row tagged " (Warehouse)". A product is in
// legacy mode exactly when it has no inventory record.
type InventoryEngine struct {
	products  *ProductRepository
	inventory *InventoryRepository
	log       *zap.Logger
	now       func() time.Time
}

func newInventoryEngine(products *ProductRepository, inventory *InventoryRepository, log *zap.Logger) *InventoryEngine {
	return &InventoryEngine{
		products:  products,
		inventory: inventory,
		log:       log,
		now:       time.Now,
	}
}

// TransferStock moves qty units between the warehouse and local buckets of
// one product family. The move is all or nothing: on any remote rejection
// local state keeps its pre-call contents.
func (e *InventoryEngine) TransferStock(ctx context.Context, productID string, qty int, from, to Location) error {
	if qty <= 0 {
		return remote.NewError(remote.KindValidation, "transfer", remote.TableInventory,
			fmt.Sprintf("transfer quantity must be positive, got %d", qty), nil)
	}
	if !from.valid() || !to.valid() {
		return remote.NewError(remote.KindValidation, "transfer", remote.TableInventory,
			fmt.Sprintf("unknown stock location %q", pickInvalid(from, to)), nil)
	}
	if from == to {
		return remote.NewError(remote.KindValidation, "transfer", remote.TableInventory,
			"source and destination are the same", nil)
	}

	product, ok := e.products.resolve(productID)
	if !ok {
		return remote.NewError(remote.KindNotFound, "transfer", remote.TableProducts,
			fmt.Sprintf("no product %s", productID), nil)
	}

	if rec, ok := e.inventory.FindByProduct(product.ProductID); ok {
		return e.transferRecord(ctx, rec, qty, from, to)
	}
	return e.transferLegacy(ctx, product, qty, from, to)
}

func (e *InventoryEngine) transferRecord(ctx context.Context, rec models.InventoryRecord, qty int, from, to Location) error {
	available := e.bucket(rec, from)
	if available < qty {
		return &InsufficientStockError{Location: from, Requested: qty, Available: available}
	}

	updated := rec
	e.addBucket(&updated, from, -qty)
	e.addBucket(&updated, to, qty)
	updated.RecomputeCurrent()
	updated.LastUpdated = e.now().UTC()

	_, err := e.inventory.Update(ctx, rec.ID, models.EncodeInventoryRecord(updated))
	if err != nil {
		return err
	}
	e.log.Info("stock transferred",
		zap.Int64("product_id", rec.ProductID), zap.Int("qty", qty),
		zap.String("from", string(from)), zap.String("to", string(to)))
	return nil
}

func (e *InventoryEngine) bucket(rec models.InventoryRecord, loc Location) int {
	if loc == LocationWarehouse {
		return rec.WarehouseStock
	}
	return rec.LocalStock
}

func (e *InventoryEngine) addBucket(rec *models.InventoryRecord, loc Location, delta int) {
	if loc == LocationWarehouse {
		rec.WarehouseStock += delta
	} else {
		rec.LocalStock += delta
	}
}

// transferLegacy moves stock between the tagged product rows of a family.
// Two remote mutations are required; if the second one fails, the first is
// reversed before the error is surfaced.
func (e *InventoryEngine) transferLegacy(ctx context.Context, addressed models.Product, qty int, from, to Location) error {
	base := addressed.BaseName()

	source, ok := e.products.FindSibling(base, from == LocationWarehouse)
	if !ok {
		return &InsufficientStockError{Location: from, Requested: qty, Available: 0}
	}
	if source.Units < qty {
		return &InsufficientStockError{Location: from, Requested: qty, Available: source.Units}
	}

	srcUnits := source.Units - qty
	if _, err := e.products.Update(ctx, source.ID, models.ProductPatch{Units: &srcUnits}.Encode()); err != nil {
		return err
	}

	var err error
	if dest, found := e.products.FindSibling(base, to == LocationWarehouse); found {
		destUnits := dest.Units + qty
		_, err = e.products.Update(ctx, dest.ID, models.ProductPatch{Units: &destUnits}.Encode())
	} else {
		name := base
		if to == LocationWarehouse {
			name = models.TagWarehouse(base)
		}
		sibling := models.Product{
			ProductID:    e.products.NextLegacyID(),
			Name:         name,
			Category:     source.Category,
			Price:        source.Price,
			Units:        qty,
			ReorderLevel: source.ReorderLevel,
		}
		_, err = e.products.Create(ctx, models.EncodeProduct(sibling))
	}
	if err != nil {
		// Put the source units back so the pair stays consistent.
		restore := source.Units
		if _, rerr := e.products.Update(ctx, source.ID, models.ProductPatch{Units: &restore}.Encode()); rerr != nil {
			e.log.Error("transfer compensation failed, source row left decremented",
				zap.String("product", source.ID), zap.Error(rerr))
		}
		return err
	}

	e.log.Info("legacy stock transferred",
		zap.String("product", base), zap.Int("qty", qty),
		zap.String("from", string(from)), zap.String("to", string(to)))
	return nil
}

// Restock adds qty units of newly received stock to the local bucket.
func (e *InventoryEngine) Restock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return remote.NewError(remote.KindValidation, "restock", remote.TableInventory,
			fmt.Sprintf("restock quantity must be positive, got %d", qty), nil)
	}

	product, ok := e.products.resolve(productID)
	if !ok {
		return remote.NewError(remote.KindNotFound, "restock", remote.TableProducts,
			fmt.Sprintf("no product %s", productID), nil)
	}

	if rec, found := e.inventory.FindByProduct(product.ProductID); found {
		updated := rec
		updated.LocalStock += qty
		updated.RecomputeCurrent()
		updated.LastUpdated = e.now().UTC()
		_, err := e.inventory.Update(ctx, rec.ID, models.EncodeInventoryRecord(updated))
		return err
	}

	// Legacy mode: the untagged row is the local bucket. Restock always
	// lands there, creating the row when the family only has a warehouse
	// row, same as the transfer path.
	base := product.BaseName()
	if target, found := e.products.FindSibling(base, false); found {
		units := target.Units + qty
		_, err := e.products.Update(ctx, target.ID, models.ProductPatch{Units: &units}.Encode())
		return err
	}
	sibling := models.Product{
		ProductID:    e.products.NextLegacyID(),
		Name:         base,
		Category:     product.Category,
		Price:        product.Price,
		Units:        qty,
		ReorderLevel: product.ReorderLevel,
	}
	_, err := e.products.Create(ctx, models.EncodeProduct(sibling))
	return err
}

func pickInvalid(from, to Location) Location {
	if !from.valid() {
		return from
	}
	return to
}

// StockView resolves the bucket totals for a product family regardless of
// which encoding it uses. Absent buckets read as zero.
func (e *InventoryEngine) StockView(productID string) (Stock, error) {
	product, ok := e.products.resolve(productID)
	if !ok {
		return Stock{}, remote.NewError(remote.KindNotFound, "stock_view", remote.TableProducts,
			fmt.Sprintf("no product %s", productID), nil)
	}

	if rec, found := e.inventory.FindByProduct(product.ProductID); found {
		return Stock{
			Warehouse: rec.WarehouseStock,
			Local:     rec.LocalStock,
			Current:   rec.WarehouseStock + rec.LocalStock,
		}, nil
	}

	return legacyStock(e.products, product), nil
}

// legacyStock derives the bucket view from tagged sibling rows.
func legacyStock(products *ProductRepository, product models.Product) Stock {
	base := product.BaseName()
	var s Stock
	if local, ok := products.FindSibling(base, false); ok {
		s.Local = local.Units
	}
	if warehouse, ok := products.FindSibling(base, true); ok {
		s.Warehouse = warehouse.Units
	}
	s.Current = s.Warehouse + s.Local
	return s
}
