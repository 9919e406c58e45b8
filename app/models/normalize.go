package models

// Normalization between the loosely-typed wire shape the remote service
// returns and the strict internal entity types. The remote is inconsistent
// about encodings (string-encoded integers, numeric ids as floats, optional
// columns, joined rows nested under the table name), so everything is coerced
// here and never past the repository boundary.

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is the loose wire shape of one remote row.
type Record = map[string]any

func recString(rec Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func recInt(rec Record, key string) int {
	return int(recInt64(rec, key))
}

func recInt64(rec Record, key string) int64 {
	switch v := rec[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			// Some paths store integers as float strings.
			f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return n
	}
	return 0
}

func recFloat(rec Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func recTime(rec Record, key string) time.Time {
	s := recString(rec, key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func recTimePtr(rec Record, key string) *time.Time {
	t := recTime(rec, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// joined pulls a denormalized field out of a nested joined row, e.g.
// rec["products"]["product_name"] on a sale.
func joined(rec Record, table, key string) string {
	nested, ok := rec[table].(map[string]any)
	if !ok {
		return ""
	}
	return recString(nested, key)
}

func DecodeProduct(rec Record) Product {
	p := Product{
		ID:           recString(rec, "id"),
		ProductID:    recInt64(rec, "product_id"),
		Name:         recString(rec, "product_name"),
		Category:     recString(rec, "category"),
		Price:        recFloat(rec, "price"),
		Units:        recInt(rec, "units"),
		ReorderLevel: recInt(rec, "reorder_level"),
		ExpiryDate:   recTimePtr(rec, "expiry_date"),
		CreatedAt:    recTime(rec, "created_at"),
		UpdatedAt:    recTime(rec, "updated_at"),
	}
	if p.ProductID == 0 {
		p.ProductID = ParseLegacyProductID(p.ID)
	}
	supplier := SupplierInfo{
		CompanyName: recString(rec, "supplier_company_name"),
		GSTNumber:   recString(rec, "supplier_gst_number"),
		Address:     recString(rec, "supplier_address"),
		City:        recString(rec, "supplier_city"),
		State:       recString(rec, "supplier_state"),
		Pincode:     recString(rec, "supplier_pincode"),
	}
	if supplier != (SupplierInfo{}) {
		p.Supplier = &supplier
	}
	return p
}

// EncodeProduct produces the create payload for a product draft. The remote
// stores units as a string-encoded integer; ids and timestamps are
// server-assigned and never sent.
func EncodeProduct(p Product) Record {
	rec := Record{
		"product_name":  p.Name,
		"category":      p.Category,
		"price":         p.Price,
		"units":         strconv.Itoa(p.Units),
		"reorder_level": p.ReorderLevel,
	}
	if p.ProductID != 0 {
		rec["product_id"] = p.ProductID
	}
	if p.ExpiryDate != nil {
		rec["expiry_date"] = p.ExpiryDate.Format("2006-01-02")
	}
	if p.Supplier != nil {
		rec["supplier_company_name"] = p.Supplier.CompanyName
		rec["supplier_gst_number"] = p.Supplier.GSTNumber
		rec["supplier_address"] = p.Supplier.Address
		rec["supplier_city"] = p.Supplier.City
		rec["supplier_state"] = p.Supplier.State
		rec["supplier_pincode"] = p.Supplier.Pincode
	}
	return rec
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Name         *string
	Category     *string
	Price        *float64
	Units        *int
	ReorderLevel *int
	ExpiryDate   *time.Time
	Supplier     *SupplierInfo
}

func (p ProductPatch) Encode() Record {
	rec := Record{}
	if p.Name != nil {
		rec["product_name"] = *p.Name
	}
	if p.Category != nil {
		rec["category"] = *p.Category
	}
	if p.Price != nil {
		rec["price"] = *p.Price
	}
	if p.Units != nil {
		rec["units"] = strconv.Itoa(*p.Units)
	}
	if p.ReorderLevel != nil {
		rec["reorder_level"] = *p.ReorderLevel
	}
	if p.ExpiryDate != nil {
		rec["expiry_date"] = p.ExpiryDate.Format("2006-01-02")
	}
	if p.Supplier != nil {
		rec["supplier_company_name"] = p.Supplier.CompanyName
		rec["supplier_gst_number"] = p.Supplier.GSTNumber
		rec["supplier_address"] = p.Supplier.Address
		rec["supplier_city"] = p.Supplier.City
		rec["supplier_state"] = p.Supplier.State
		rec["supplier_pincode"] = p.Supplier.Pincode
	}
	return rec
}

func DecodeInventoryRecord(rec Record) InventoryRecord {
	r := InventoryRecord{
		ID:             recString(rec, "id"),
		ProductID:      recInt64(rec, "product_id"),
		ProductName:    recString(rec, "product_name"),
		CurrentStock:   recInt(rec, "current_stock"),
		WarehouseStock: recInt(rec, "warehouse_stock"),
		LocalStock:     recInt(rec, "local_stock"),
		ReservedStock:  recInt(rec, "reserved_stock"),
		ReorderLevel:   recInt(rec, "reorder_level"),
		LastUpdated:    recTime(rec, "last_updated"),
	}
	if r.ProductName == "" {
		r.ProductName = joined(rec, "products", "product_name")
	}
	// The sum invariant holds regardless of what the remote sent.
	r.RecomputeCurrent()
	return r
}

func EncodeInventoryRecord(r InventoryRecord) Record {
	r.RecomputeCurrent()
	return Record{
		"product_id":      r.ProductID,
		"product_name":    r.ProductName,
		"current_stock":   r.CurrentStock,
		"warehouse_stock": r.WarehouseStock,
		"local_stock":     r.LocalStock,
		"reserved_stock":  r.ReservedStock,
		"reorder_level":   r.ReorderLevel,
		"last_updated":    r.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func DecodeSale(rec Record) Sale {
	s := Sale{
		ID:              recString(rec, "id"),
		SaleID:          recInt64(rec, "sale_id"),
		ProductID:       recString(rec, "product_id"),
		LegacyProductID: recInt64(rec, "legacy_product_id"),
		ClientID:        recString(rec, "client_id"),
		ClientName:      recString(rec, "client_name"),
		QuantitySold:    recInt(rec, "quantity_sold"),
		SellingPrice:    recFloat(rec, "selling_price"),
		TotalAmount:     recFloat(rec, "total_amount"),
		SaleDate:        recTime(rec, "sale_date"),
		PaymentMethod:   recString(rec, "payment_method"),
		Notes:           recString(rec, "notes"),
		CreatedAt:       recTime(rec, "created_at"),
	}
	s.ProductName = recString(rec, "product_name")
	if s.ProductName == "" {
		s.ProductName = joined(rec, "products", "product_name")
	}
	if s.ClientName == "" {
		s.ClientName = joined(rec, "clients", "name")
	}
	if s.LegacyProductID == 0 {
		s.LegacyProductID = ParseLegacyProductID(s.ProductID)
	}
	// The stored total is authoritative when present; otherwise it is the
	// product of quantity and price.
	if s.TotalAmount == 0 {
		s.TotalAmount = float64(s.QuantitySold) * s.SellingPrice
	}
	if s.SaleDate.IsZero() {
		s.SaleDate = s.CreatedAt
	}
	return s
}

func EncodeSale(s Sale) Record {
	if s.TotalAmount == 0 {
		s.TotalAmount = float64(s.QuantitySold) * s.SellingPrice
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = "cash"
	}
	rec := Record{
		"product_id":     s.ProductID,
		"client_id":      s.ClientID,
		"quantity_sold":  s.QuantitySold,
		"selling_price":  s.SellingPrice,
		"total_amount":   s.TotalAmount,
		"payment_method": s.PaymentMethod,
		"notes":          s.Notes,
	}
	if s.SaleID != 0 {
		rec["sale_id"] = s.SaleID
	}
	if s.ClientName != "" {
		rec["client_name"] = s.ClientName
	}
	if !s.SaleDate.IsZero() {
		rec["sale_date"] = s.SaleDate.UTC().Format(time.RFC3339)
	}
	return rec
}

func DecodeClient(rec Record) Client {
	return Client{
		ID:        recString(rec, "id"),
		Name:      recString(rec, "name"),
		Email:     recString(rec, "email"),
		Phone:     recString(rec, "phone"),
		Address:   recString(rec, "address"),
		City:      recString(rec, "city"),
		State:     recString(rec, "state"),
		Pincode:   recString(rec, "pincode"),
		GSTNumber: recString(rec, "gst_number"),
		CreatedAt: recTime(rec, "created_at"),
		UpdatedAt: recTime(rec, "updated_at"),
	}
}

func EncodeClient(c Client) Record {
	return Record{
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"address":    c.Address,
		"city":       c.City,
		"state":      c.State,
		"pincode":    c.Pincode,
		"gst_number": c.GSTNumber,
	}
}

type ClientPatch struct {
	Name      *string
	Email     *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	Pincode   *string
	GSTNumber *string
}

func (p ClientPatch) Encode() Record {
	rec := Record{}
	if p.Name != nil {
		rec["name"] = *p.Name
	}
	if p.Email != nil {
		rec["email"] = *p.Email
	}
	if p.Phone != nil {
		rec["phone"] = *p.Phone
	}
	if p.Address != nil {
		rec["address"] = *p.Address
	}
	if p.City != nil {
		rec["city"] = *p.City
	}
	if p.State != nil {
		rec["state"] = *p.State
	}
	if p.Pincode != nil {
		rec["pincode"] = *p.Pincode
	}
	if p.GSTNumber != nil {
		rec["gst_number"] = *p.GSTNumber
	}
	return rec
}

func DecodePayment(rec Record) Payment {
	p := Payment{
		ID:              recString(rec, "id"),
		ClientID:        recString(rec, "client_id"),
		ClientName:      recString(rec, "client_name"),
		Amount:          recFloat(rec, "amount"),
		PaymentDate:     recTime(rec, "payment_date"),
		PaymentMethod:   recString(rec, "payment_method"),
		ReferenceNumber: recString(rec, "reference_number"),
		Notes:           recString(rec, "notes"),
		Status:          CoerceApprovalStatus(recString(rec, "status")),
		CreatedAt:       recTime(rec, "created_at"),
	}
	if p.ClientName == "" {
		p.ClientName = joined(rec, "clients", "name")
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = p.CreatedAt
	}
	return p
}

func EncodePayment(p Payment) Record {
	status := p.Status
	if status == "" {
		status = StatusCompleted
	}
	rec := Record{
		"client_id":        p.ClientID,
		"amount":           p.Amount,
		"payment_method":   p.PaymentMethod,
		"reference_number": p.ReferenceNumber,
		"notes":            p.Notes,
		"status":           string(status),
	}
	if !p.PaymentDate.IsZero() {
		rec["payment_date"] = p.PaymentDate.UTC().Format(time.RFC3339)
	}
	return rec
}

type PaymentPatch struct {
	Amount          *float64
	PaymentMethod   *string
	ReferenceNumber *string
	Notes           *string
	Status          *ApprovalStatus
}

func (p PaymentPatch) Encode() Record {
	rec := Record{}
	if p.Amount != nil {
		rec["amount"] = *p.Amount
	}
	if p.PaymentMethod != nil {
		rec["payment_method"] = *p.PaymentMethod
	}
	if p.ReferenceNumber != nil {
		rec["reference_number"] = *p.ReferenceNumber
	}
	if p.Notes != nil {
		rec["notes"] = *p.Notes
	}
	if p.Status != nil {
		rec["status"] = string(*p.Status)
	}
	return rec
}

func DecodeMeeting(rec Record) Meeting {
	return Meeting{
		ID:         recString(rec, "id"),
		ClientID:   recString(rec, "client_id"),
		ClientName: recString(rec, "client_name"),
		Title:      recString(rec, "title"),
		Date:       recTime(rec, "date"),
		Time:       recString(rec, "time"),
		Type:       CoerceMeetingType(recString(rec, "type")),
		Status:     CoerceMeetingStatus(recString(rec, "status")),
		Notes:      recString(rec, "notes"),
		CreatedAt:  recTime(rec, "created_at"),
	}
}

func EncodeMeeting(m Meeting) Record {
	status := m.Status
	if status == "" {
		status = MeetingScheduled
	}
	return Record{
		"client_id":   m.ClientID,
		"client_name": m.ClientName,
		"title":       m.Title,
		"date":        m.Date.UTC().Format("2006-01-02"),
		"time":        m.Time,
		"type":        string(CoerceMeetingType(string(m.Type))),
		"status":      string(status),
		"notes":       m.Notes,
	}
}

type MeetingPatch struct {
	Title  *string
	Date   *time.Time
	Time   *string
	Type   *MeetingType
	Status *MeetingStatus
	Notes  *string
}

func (p MeetingPatch) Encode() Record {
	rec := Record{}
	if p.Title != nil {
		rec["title"] = *p.Title
	}
	if p.Date != nil {
		rec["date"] = p.Date.UTC().Format("2006-01-02")
	}
	if p.Time != nil {
		rec["time"] = *p.Time
	}
	if p.Type != nil {
		rec["type"] = string(*p.Type)
	}
	if p.Status != nil {
		rec["status"] = string(*p.Status)
	}
	if p.Notes != nil {
		rec["notes"] = *p.Notes
	}
	return rec
}

func DecodeProductExpiry(rec Record) ProductExpiry {
	e := ProductExpiry{
		ID:          recString(rec, "id"),
		ProductID:   recString(rec, "product_id"),
		ProductName: recString(rec, "product_name"),
		BatchNumber: recString(rec, "batch_number"),
		ExpiryDate:  recTime(rec, "expiry_date"),
		Quantity:    recInt(rec, "quantity"),
		Status:      CoerceExpiryStatus(recString(rec, "status")),
		Notes:       recString(rec, "notes"),
		CreatedAt:   recTime(rec, "created_at"),
	}
	if e.ProductName == "" {
		e.ProductName = joined(rec, "products", "product_name")
	}
	return e
}

func EncodeProductExpiry(e ProductExpiry) Record {
	status := e.Status
	if status == "" {
		status = ExpiryActive
	}
	return Record{
		"product_id":   e.ProductID,
		"product_name": e.ProductName,
		"batch_number": e.BatchNumber,
		"expiry_date":  e.ExpiryDate.UTC().Format("2006-01-02"),
		"quantity":     e.Quantity,
		"status":       string(status),
		"notes":        e.Notes,
	}
}

type ProductExpiryPatch struct {
	ExpiryDate *time.Time
	Quantity   *int
	Status     *ExpiryStatus
	Notes      *string
}

func (p ProductExpiryPatch) Encode() Record {
	rec := Record{}
	if p.ExpiryDate != nil {
		rec["expiry_date"] = p.ExpiryDate.UTC().Format("2006-01-02")
	}
	if p.Quantity != nil {
		rec["quantity"] = *p.Quantity
	}
	if p.Status != nil {
		rec["status"] = string(*p.Status)
	}
	if p.Notes != nil {
		rec["notes"] = *p.Notes
	}
	return rec
}

func DecodeSupplier(rec Record) Supplier {
	s := Supplier{
		ID:        recString(rec, "id"),
		Name:      recString(rec, "supplier_name"),
		GSTNumber: recString(rec, "gst_number"),
		Email:     recString(rec, "email"),
		Phone:     recString(rec, "phone"),
		Address:   recString(rec, "address"),
		City:      recString(rec, "city"),
		State:     recString(rec, "state"),
		Pincode:   recString(rec, "pincode"),
		CreatedAt: recTime(rec, "created_at"),
	}
	if s.Name == "" {
		s.Name = recString(rec, "company_name")
	}
	return s
}

func EncodeSupplier(s Supplier) Record {
	return Record{
		"supplier_name": s.Name,
		"gst_number":    s.GSTNumber,
		"email":         s.Email,
		"phone":         s.Phone,
		"address":       s.Address,
		"city":          s.City,
		"state":         s.State,
		"pincode":       s.Pincode,
	}
}

type SupplierPatch struct {
	Name      *string
	GSTNumber *string
	Email     *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	Pincode   *string
}

func (p SupplierPatch) Encode() Record {
	rec := Record{}
	if p.Name != nil {
		rec["supplier_name"] = *p.Name
	}
	if p.GSTNumber != nil {
		rec["gst_number"] = *p.GSTNumber
	}
	if p.Email != nil {
		rec["email"] = *p.Email
	}
	if p.Phone != nil {
		rec["phone"] = *p.Phone
	}
	if p.Address != nil {
		rec["address"] = *p.Address
	}
	if p.City != nil {
		rec["city"] = *p.City
	}
	if p.State != nil {
		rec["state"] = *p.State
	}
	if p.Pincode != nil {
		rec["pincode"] = *p.Pincode
	}
	return rec
}

func DecodeSalesReturn(rec Record) SalesReturn {
	r := SalesReturn{
		ID:               recString(rec, "id"),
		SaleID:           recString(rec, "sale_id"),
		ProductID:        recString(rec, "product_id"),
		ProductName:      recString(rec, "product_name"),
		ClientID:         recString(rec, "client_id"),
		ClientName:       recString(rec, "client_name"),
		QuantityReturned: recInt(rec, "quantity_returned"),
		ReturnAmount:     recFloat(rec, "return_amount"),
		ReturnDate:       recTime(rec, "return_date"),
		Reason:           recString(rec, "reason"),
		Status:           CoerceApprovalStatus(recString(rec, "status")),
		CreatedAt:        recTime(rec, "created_at"),
	}
	if r.ProductName == "" {
		r.ProductName = joined(rec, "products", "product_name")
	}
	if r.ClientName == "" {
		r.ClientName = joined(rec, "clients", "name")
	}
	return r
}

func EncodeSalesReturn(r SalesReturn) Record {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	rec := Record{
		"sale_id":           r.SaleID,
		"product_id":        r.ProductID,
		"client_id":         r.ClientID,
		"quantity_returned": r.QuantityReturned,
		"return_amount":     r.ReturnAmount,
		"reason":            r.Reason,
		"status":            string(status),
	}
	if !r.ReturnDate.IsZero() {
		rec["return_date"] = r.ReturnDate.UTC().Format("2006-01-02")
	}
	return rec
}

func DecodePurchaseReturn(rec Record) PurchaseReturn {
	r := PurchaseReturn{
		ID:              recString(rec, "id"),
		PurchaseOrderID: recString(rec, "purchase_order_id"),
		SupplierID:      recString(rec, "supplier_id"),
		SupplierName:    recString(rec, "supplier_name"),
		ReturnNumber:    recString(rec, "return_number"),
		ReturnDate:      recTime(rec, "return_date"),
		TotalAmount:     recFloat(rec, "total_amount"),
		Reason:          recString(rec, "reason"),
		Status:          CoerceApprovalStatus(recString(rec, "status")),
		CreatedAt:       recTime(rec, "created_at"),
	}
	if r.SupplierName == "" {
		r.SupplierName = joined(rec, "suppliers", "supplier_name")
	}
	return r
}

func EncodePurchaseReturn(r PurchaseReturn) Record {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	rec := Record{
		"purchase_order_id": r.PurchaseOrderID,
		"supplier_id":       r.SupplierID,
		"return_number":     r.ReturnNumber,
		"total_amount":      r.TotalAmount,
		"reason":            r.Reason,
		"status":            string(status),
	}
	if !r.ReturnDate.IsZero() {
		rec["return_date"] = r.ReturnDate.UTC().Format("2006-01-02")
	}
	return rec
}

// ReturnStatusPatch updates only the approval status of a return.
type ReturnStatusPatch struct {
	Status ApprovalStatus
}

func (p ReturnStatusPatch) Encode() Record {
	return Record{"status": string(CoerceApprovalStatus(string(p.Status)))}
}
