package store

import (
	"context"
	"testing"

	"StockDesk/app/models"
	"StockDesk/app/remote"
)

func TestLoadAllAttemptsEveryTable(t *testing.T) {
	backend := newFakeBackend()
	backend.service(remote.TableClients).seed(remote.Record{"id": "c1", "name": "Ravi"})
	backend.service(remote.TableProducts).failList =
		remote.NewError(remote.KindNetwork, "list", "products", "offline", nil)

	s := New(backend, nil)
	err := s.LoadAll(context.Background())
	if err == nil {
		t.Fatal("expected LoadAll to report the failed table")
	}
	// The failing products fetch must not block the clients fetch.
	if got := len(s.Clients.List()); got != 1 {
		t.Errorf("clients loaded = %d, want 1", got)
	}
}

func TestReload(t *testing.T) {
	s, backend := newTestStore(t, nil)

	backend.service(remote.TableClients).seed(remote.Record{"id": "c1", "name": "Ravi"})
	if err := s.Reload(context.Background(), remote.TableClients); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := len(s.Clients.List()); got != 1 {
		t.Errorf("clients = %d after reload", got)
	}

	if err := s.Reload(context.Background(), "nonsense"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	s, _ := newTestStore(t, map[string][]remote.Record{
		remote.TableProducts:  {{"id": "p1", "product_name": "Pen"}},
		remote.TableClients:   {{"id": "c1", "name": "Ravi"}},
		remote.TableSales:     {{"id": "s1", "quantity_sold": float64(1), "selling_price": 10.0}},
		remote.TableInventory: {{"id": "i1", "product_id": float64(1)}},
	})

	s.Clear()
	if len(s.Products.List())+len(s.Clients.List())+len(s.Sales.List())+len(s.Inventory.List()) != 0 {
		t.Error("collections not empty after Clear")
	}
}

func TestAddProductSeedsInventoryRecord(t *testing.T) {
	s, _ := newTestStore(t, nil)

	created, err := s.AddProduct(context.Background(), models.Product{
		Name: "Pen", Price: 12, Units: 10, ReorderLevel: 3,
	})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if created.ID == "" || created.ProductID == 0 {
		t.Fatalf("created = %+v, want assigned ids", created)
	}

	rec, ok := s.Inventory.FindByProduct(created.ProductID)
	if !ok {
		t.Fatal("inventory record not seeded")
	}
	if rec.LocalStock != 10 || rec.WarehouseStock != 0 || rec.CurrentStock != 10 {
		t.Errorf("record = %+v, want initial units in local bucket", rec)
	}
	if rec.ReorderLevel != 3 {
		t.Errorf("reorder = %d", rec.ReorderLevel)
	}
}

func TestUpdateProductSyncsInventory(t *testing.T) {
	s, _ := newTestStore(t, map[string][]remote.Record{
		remote.TableProducts: {
			{"id": "p1", "product_id": float64(7), "product_name": "Pen", "units": "5"},
		},
		remote.TableInventory: {
			{"id": "i1", "product_id": float64(7), "warehouse_stock": float64(4), "local_stock": float64(5)},
		},
	})

	units := 9
	if _, err := s.UpdateProduct(context.Background(), "p1", models.ProductPatch{Units: &units}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	rec, _ := s.Inventory.FindByProduct(7)
	if rec.LocalStock != 9 || rec.WarehouseStock != 4 || rec.CurrentStock != 13 {
		t.Errorf("record = %+v, want local bucket synced to 9", rec)
	}
	p, _ := s.Products.FindByID("p1")
	if p.Units != 9 {
		t.Errorf("product units = %d", p.Units)
	}
}
