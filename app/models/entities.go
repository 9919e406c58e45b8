package models

import (
	"strconv"
	"strings"
	"time"
)

// WarehouseSuffix tags a product row that represents the warehouse-located
// stock of its base product. This encoding predates the inventory table and
// is still present on unmigrated products.
const WarehouseSuffix = " (Warehouse)"

// SupplierInfo is the supplier snapshot embedded on a product row.
type SupplierInfo struct {
	CompanyName string `json:"company_name"`
	GSTNumber   string `json:"gst_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
}

// Product is a catalog entry. ID is the stable primary key; ProductID is the
// legacy numeric identifier still used by some call sites, and both must
// resolve to the same entity.
type Product struct {
	ID           string        `json:"id"`
	ProductID    int64         `json:"product_id"`
	Name         string        `json:"product_name"`
	Category     string        `json:"category"`
	Price        float64       `json:"price"`
	Units        int           `json:"units"`
	ReorderLevel int           `json:"reorder_level"`
	ExpiryDate   *time.Time    `json:"expiry_date,omitempty"`
	Supplier     *SupplierInfo `json:"supplier,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BaseName strips the warehouse tag, if any.
func (p Product) BaseName() string {
	return strings.TrimSuffix(p.Name, WarehouseSuffix)
}

// IsWarehouseTagged reports whether this row carries the legacy warehouse tag.
func (p Product) IsWarehouseTagged() bool {
	return strings.HasSuffix(p.Name, WarehouseSuffix)
}

// TagWarehouse returns the warehouse-tagged name for a base product name.
func TagWarehouse(base string) string {
	return strings.TrimSuffix(base, WarehouseSuffix) + WarehouseSuffix
}

// ParseLegacyProductID extracts the numeric id from legacy "product-<n>"
// identifiers. Returns 0 when the id carries no numeric tail.
func ParseLegacyProductID(id string) int64 {
	idx := strings.LastIndex(id, "-")
	if idx < 0 || idx == len(id)-1 {
		return 0
	}
	n, err := strconv.ParseInt(id[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// InventoryRecord tracks the two stock buckets for one product. CurrentStock
// is always WarehouseStock + LocalStock and is recomputed on every mutation,
// never set independently.
type InventoryRecord struct {
	ID             string    `json:"id"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	CurrentStock   int       `json:"current_stock"`
	WarehouseStock int       `json:"warehouse_stock"`
	LocalStock     int       `json:"local_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	ReorderLevel   int       `json:"reorder_level"`
	LastUpdated    time.Time `json:"last_updated"`
}

// RecomputeCurrent re-derives CurrentStock from the buckets.
func (r *InventoryRecord) RecomputeCurrent() {
	r.CurrentStock = r.WarehouseStock + r.LocalStock
}

// Sale is immutable once recorded; there is no partial update path.
type Sale struct {
	ID              string    `json:"id"`
	SaleID          int64     `json:"sale_id"`
	ProductID       string    `json:"product_id"`
	LegacyProductID int64     `json:"legacy_product_id"`
	ProductName     string    `json:"product_name"`
	ClientID        string    `json:"client_id"`
	ClientName      string    `json:"client_name"`
	QuantitySold    int       `json:"quantity_sold"`
	SellingPrice    float64   `json:"selling_price"`
	TotalAmount     float64   `json:"total_amount"`
	SaleDate        time.Time `json:"sale_date"`
	PaymentMethod   string    `json:"payment_method"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	GSTNumber string    `json:"gst_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Payment struct {
	ID              string         `json:"id"`
	ClientID        string         `json:"client_id"`
	ClientName      string         `json:"client_name"`
	Amount          float64        `json:"amount"`
	PaymentDate     time.Time      `json:"payment_date"`
	PaymentMethod   string         `json:"payment_method"`
	ReferenceNumber string         `json:"reference_number"`
	Notes           string         `json:"notes"`
	Status          ApprovalStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Meeting struct {
	ID         string        `json:"id"`
	ClientID   string        `json:"client_id"`
	ClientName string        `json:"client_name"`
	Title      string        `json:"title"`
	Date       time.Time     `json:"date"`
	Time       string        `json:"time"`
	Type       MeetingType   `json:"type"`
	Status     MeetingStatus `json:"status"`
	Notes      string        `json:"notes"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ProductExpiry struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	BatchNumber string       `json:"batch_number"`
	ExpiryDate  time.Time    `json:"expiry_date"`
	Quantity    int          `json:"quantity"`
	Status      ExpiryStatus `json:"status"`
	Notes       string       `json:"notes"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"supplier_name"`
	GSTNumber string    `json:"gst_number"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
}

type SalesReturn struct {
	ID               string         `json:"id"`
	SaleID           string         `json:"sale_id"`
	ProductID        string         `json:"product_id"`
	ProductName      string         `json:"product_name"`
	ClientID         string         `json:"client_id"`
	ClientName       string         `json:"client_name"`
	QuantityReturned int            `json:"quantity_returned"`
	ReturnAmount     float64        `json:"return_amount"`
	ReturnDate       time.Time      `json:"return_date"`
	Reason           string         `json:"reason"`
	Status           ApprovalStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

type PurchaseReturn struct {
	ID              string         `json:"id"`
	PurchaseOrderID string         `json:"purchase_order_id"`
	SupplierID      string         `json:"supplier_id"`
	SupplierName    string         `json:"supplier_name"`
	ReturnNumber    string         `json:"return_number"`
	ReturnDate      time.Time      `json:"return_date"`
	TotalAmount     float64        `json:"total_amount"`
	Reason          string         `json:"reason"`
	Status          ApprovalStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

// DashboardAnalytics is derived from current store contents on every read;
// it is never cached across mutations.
type DashboardAnalytics struct {
	TodayRevenue        float64 `json:"today_revenue"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	YearlyRevenue       float64 `json:"yearly_revenue"`
	TodayTransactions   int     `json:"today_transactions"`
	MonthlyTransactions int     `json:"monthly_transactions"`
	YearlyTransactions  int     `json:"yearly_transactions"`
	TotalProducts       int     `json:"total_products"`
	LowStockCount       int     `json:"low_stock_count"`
	OutOfStockCount     int     `json:"out_of_stock_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
}

// ChartPoint is one labelled value in a chart series.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
