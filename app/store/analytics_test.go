package store

import (
	"testing"
	"time"

	"StockDesk/app/models"
)

func day(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func TestDashboardRevenueWindows(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		{ID: "s1", TotalAmount: 200, SaleDate: now.Add(-2 * time.Hour)},
		{ID: "s2", TotalAmount: 150, SaleDate: day(now, -1)},
		{ID: "s3", TotalAmount: 100, SaleDate: time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)},
		{ID: "s4", TotalAmount: 50, SaleDate: time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)},
	}

	a := Dashboard(sales, nil, nil, now)
	if a.TodayRevenue != 200 || a.TodayTransactions != 1 {
		t.Errorf("today = %v / %d, want 200 / 1", a.TodayRevenue, a.TodayTransactions)
	}
	if a.MonthlyRevenue != 350 || a.MonthlyTransactions != 2 {
		t.Errorf("month = %v / %d, want 350 / 2", a.MonthlyRevenue, a.MonthlyTransactions)
	}
	if a.YearlyRevenue != 450 || a.YearlyTransactions != 3 {
		t.Errorf("year = %v / %d, want 450 / 3", a.YearlyRevenue, a.YearlyTransactions)
	}
}

func TestDashboardIncludesLaterSameDaySales(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		{ID: "s1", TotalAmount: 200, SaleDate: time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)},
		{ID: "s2", TotalAmount: 80, SaleDate: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)},
		{ID: "s3", TotalAmount: 30, SaleDate: time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)},
		{ID: "s4", TotalAmount: 5, SaleDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	a := Dashboard(sales, nil, nil, now)
	if a.TodayRevenue != 200 || a.TodayTransactions != 1 {
		t.Errorf("today = %v / %d, want 200 / 1 (same calendar day, later hour)", a.TodayRevenue, a.TodayTransactions)
	}
	if a.MonthlyRevenue != 280 || a.MonthlyTransactions != 2 {
		t.Errorf("month = %v / %d, want 280 / 2", a.MonthlyRevenue, a.MonthlyTransactions)
	}
	if a.YearlyRevenue != 310 || a.YearlyTransactions != 3 {
		t.Errorf("year = %v / %d, want 310 / 3 (next year excluded)", a.YearlyRevenue, a.YearlyTransactions)
	}
}

func TestDashboardStockPartition(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{ID: "p1", ProductID: 1, Name: "Low", Price: 10},
		{ID: "p2", ProductID: 2, Name: "Out", Price: 20},
		{ID: "p3", ProductID: 3, Name: "Fine", Price: 30},
	}
	records := []models.InventoryRecord{
		{ID: "i1", ProductID: 1, WarehouseStock: 1, LocalStock: 1, ReorderLevel: 5},
		{ID: "i2", ProductID: 2, WarehouseStock: 0, LocalStock: 0, ReorderLevel: 5},
		{ID: "i3", ProductID: 3, WarehouseStock: 10, LocalStock: 10, ReorderLevel: 5},
	}

	a := Dashboard(nil, products, records, now)
	if a.TotalProducts != 3 {
		t.Errorf("TotalProducts = %d", a.TotalProducts)
	}
	if a.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d, want 1", a.LowStockCount)
	}
	if a.OutOfStockCount != 1 {
		t.Errorf("OutOfStockCount = %d, want 1", a.OutOfStockCount)
	}
	// 2*10 + 0*20 + 20*30
	if a.TotalInventoryValue != 620 {
		t.Errorf("TotalInventoryValue = %v, want 620", a.TotalInventoryValue)
	}
}

func TestDashboardLegacyRowsCountOnce(t *testing.T) {
	products := []models.Product{
		{ID: "p1", ProductID: 1, Name: "Pen", Units: 10, Price: 5, ReorderLevel: 20},
		{ID: "p2", ProductID: 2, Name: "Pen (Warehouse)", Units: 4, Price: 5},
	}

	a := Dashboard(nil, products, nil, time.Now())
	if a.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, warehouse row must not count", a.TotalProducts)
	}
	// Family stock 14 at price 5.
	if a.TotalInventoryValue != 70 {
		t.Errorf("TotalInventoryValue = %v, want 70", a.TotalInventoryValue)
	}
	if a.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d, want 1 (14 <= reorder 20)", a.LowStockCount)
	}
}

func TestTopProductsMergesSiblings(t *testing.T) {
	products := []models.Product{
		{ID: "p1", ProductID: 1, Name: "Pen"},
		{ID: "p2", ProductID: 2, Name: "Pen (Warehouse)"},
		{ID: "p3", ProductID: 3, Name: "Book"},
	}
	sales := []models.Sale{
		{ID: "s1", ProductID: "p1", TotalAmount: 100},
		{ID: "s2", ProductID: "p2", TotalAmount: 60},
		{ID: "s3", ProductID: "p3", TotalAmount: 120},
		{ID: "s4", ProductID: "gone", ProductName: "Orphan", TotalAmount: 10},
	}

	top := TopProducts(sales, products, 5)
	if len(top) != 3 {
		t.Fatalf("len = %d: %+v", len(top), top)
	}
	if top[0].Name != "Pen" || top[0].Value != 160 {
		t.Errorf("top[0] = %+v, want merged Pen 160", top[0])
	}
	if top[1].Name != "Book" || top[1].Value != 120 {
		t.Errorf("top[1] = %+v", top[1])
	}
	if top[2].Name != "Orphan" || top[2].Value != 10 {
		t.Errorf("top[2] = %+v, want fallback to sale's product name", top[2])
	}
}

func TestTopProductsLimit(t *testing.T) {
	var sales []models.Sale
	var products []models.Product
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		products = append(products, models.Product{ID: id, Name: "P" + id})
		sales = append(sales, models.Sale{ID: id, ProductID: id, TotalAmount: float64(i + 1)})
	}
	top := TopProducts(sales, products, 5)
	if len(top) != 5 {
		t.Fatalf("len = %d, want 5", len(top))
	}
	if top[0].Value != 8 {
		t.Errorf("top[0] = %+v, want highest revenue first", top[0])
	}
}

func TestRevenueSeriesZeroFilled(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		{ID: "s1", TotalAmount: 100, SaleDate: now},
		{ID: "s2", TotalAmount: 40, SaleDate: day(now, -3)},
		{ID: "s3", TotalAmount: 25, SaleDate: day(now, -3)},
		{ID: "s4", TotalAmount: 999, SaleDate: day(now, -10)},
	}

	series := RevenueSeries(sales, now, 7)
	if len(series) != 7 {
		t.Fatalf("len = %d, want 7", len(series))
	}
	if series[6].Name != "Aug 28" || series[6].Value != 100 {
		t.Errorf("today = %+v, want Aug 28 / 100", series[6])
	}
	if series[3].Name != "Aug 25" || series[3].Value != 65 {
		t.Errorf("day -3 = %+v, want Aug 25 / 65", series[3])
	}
	for _, i := range []int{0, 1, 2, 4, 5} {
		if series[i].Value != 0 {
			t.Errorf("series[%d] = %+v, want zero fill", i, series[i])
		}
	}
}
