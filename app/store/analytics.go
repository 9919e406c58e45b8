package store

import (
	"sort"
	"time"

	"StockDesk/app/models"
)

// Analytics are computed fresh from the current snapshots on every call,
// never cached across mutations. Calendar boundaries use now's location.

// Dashboard derives the headline aggregates.
func Dashboard(sales []models.Sale, products []models.Product, records []models.InventoryRecord, now time.Time) models.DashboardAnalytics {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0)

	var a models.DashboardAnalytics
	for _, s := range sales {
		// Calendar-period match; a sale dated later the same day still
		// belongs to today.
		d := s.SaleDate.In(now.Location())
		if !d.Before(yearStart) && d.Before(yearEnd) {
			a.YearlyRevenue += s.TotalAmount
			a.YearlyTransactions++
		}
		if !d.Before(monthStart) && d.Before(monthEnd) {
			a.MonthlyRevenue += s.TotalAmount
			a.MonthlyTransactions++
		}
		if !d.Before(dayStart) && d.Before(dayEnd) {
			a.TodayRevenue += s.TotalAmount
			a.TodayTransactions++
		}
	}

	recByProduct := make(map[int64]models.InventoryRecord, len(records))
	for _, r := range records {
		recByProduct[r.ProductID] = r
	}

	for _, p := range products {
		if p.IsWarehouseTagged() {
			// Warehouse rows are the legacy encoding of a bucket, not a
			// catalog entry of their own.
			continue
		}
		a.TotalProducts++

		var current, reorder int
		if rec, ok := recByProduct[p.ProductID]; ok {
			current = rec.WarehouseStock + rec.LocalStock
			reorder = rec.ReorderLevel
		} else {
			s := legacyStockFromSlice(products, p)
			current = s.Current
			reorder = p.ReorderLevel
		}

		if current == 0 {
			a.OutOfStockCount++
		} else if current <= reorder {
			a.LowStockCount++
		}
		a.TotalInventoryValue += float64(current) * p.Price
	}
	return a
}

// TopProducts ranks product families by revenue, grouped by resolved
// identity so a family's local and warehouse rows never split revenue.
func TopProducts(sales []models.Sale, products []models.Product, n int) []models.ChartPoint {
	byID := make(map[string]models.Product, len(products))
	byLegacy := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		if p.ProductID != 0 {
			byLegacy[p.ProductID] = p
		}
	}

	revenue := make(map[string]float64)
	for _, s := range sales {
		name := resolveSaleProductName(s, byID, byLegacy)
		if name == "" {
			continue
		}
		revenue[name] += s.TotalAmount
	}

	points := make([]models.ChartPoint, 0, len(revenue))
	for name, total := range revenue {
		points = append(points, models.ChartPoint{Name: name, Value: total})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Name < points[j].Name
	})
	if len(points) > n {
		points = points[:n]
	}
	return points
}

func resolveSaleProductName(s models.Sale, byID map[string]models.Product, byLegacy map[int64]models.Product) string {
	if p, ok := byID[s.ProductID]; ok {
		return p.BaseName()
	}
	if s.LegacyProductID != 0 {
		if p, ok := byLegacy[s.LegacyProductID]; ok {
			return p.BaseName()
		}
	}
	if s.ProductName != "" {
		return models.Product{Name: s.ProductName}.BaseName()
	}
	return s.ProductID
}

// RevenueSeries is a zero-filled daily revenue series for the trailing
// window ending today, labelled like "Jan 2".
func RevenueSeries(sales []models.Sale, now time.Time, days int) []models.ChartPoint {
	if days <= 0 {
		return nil
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	points := make([]models.ChartPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := dayStart.AddDate(0, 0, i-days+1)
		label := day.Format("Jan 2")
		points[i] = models.ChartPoint{Name: label}
		index[day.Format("2006-01-02")] = i
	}

	for _, s := range sales {
		key := s.SaleDate.In(now.Location()).Format("2006-01-02")
		if i, ok := index[key]; ok {
			points[i].Value += s.TotalAmount
		}
	}
	return points
}

// legacyStockFromSlice is legacyStock over a plain snapshot, for the pure
// analytics path.
func legacyStockFromSlice(products []models.Product, product models.Product) Stock {
	base := product.BaseName()
	warehouseName := models.TagWarehouse(base)
	var s Stock
	for _, p := range products {
		switch p.Name {
		case base:
			s.Local += p.Units
		case warehouseName:
			s.Warehouse += p.Units
		}
	}
	s.Current = s.Warehouse + s.Local
	return s
}
