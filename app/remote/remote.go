// Package remote defines the contract every backend for the synchronized
// store implements: a per-table CRUD service speaking loose wire records.
package remote

import "context"

// Record is one row as the backend returns it. Values are whatever the
// transport decoded; normalization happens in app/models.
type Record = map[string]any

// Table names used across all backends.
const (
	TableProducts        = "products"
	TableInventory       = "inventory"
	TableSales           = "sales"
	TableClients         = "clients"
	TablePayments        = "payments"
	TableMeetings        = "meetings"
	TableProductExpiries = "product_expiry"
	TableSuppliers       = "suppliers"
	TableSalesReturns    = "sales_returns"
	TablePurchaseReturns = "purchase_returns"
)

// EntityService is the CRUD surface of one table. Create and Update return
// the stored record, which is authoritative for server-assigned fields.
type EntityService interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id string, patch Record) (Record, error)
	Delete(ctx context.Context, id string) error
}

// Backend hands out the service for a table.
type Backend interface {
	Table(name string) EntityService
}
