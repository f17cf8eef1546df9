// Package report computes sales and stock figures from already-loaded
// transactions, products and stock logs. Nothing here touches storage.
package report

import (
	"fmt"
	"sort"
	"time"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
)

type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// DayFormat is the dd/MM label used on the daily charts.
const DayFormat = "02/01"

// DefaultTopN is how many products the best seller list holds.
const DefaultTopN = 5

// Period is a closed interval in one location.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Window returns the calendar-local bounds of r around now. Weeks start on
// Sunday.
func Window(r Range, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var start, next time.Time
	switch r {
	case RangeToday, "":
		start, next = day, day.AddDate(0, 0, 1)
	case RangeWeek:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		next = start.AddDate(0, 0, 7)
	case RangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		return Period{}, fmt.Errorf("unknown range %q", r)
	}
	return Period{Start: start, End: next.Add(-time.Nanosecond)}, nil
}

type ProductSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Revenue   int64     `json:"revenue"`
}

type CategoryRevenue struct {
	Category string `json:"category"`
	Revenue  int64  `json:"revenue"`
}

type DailySales struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type Summary struct {
	Period           Period            `json:"period"`
	Revenue          int64             `json:"revenue"`
	Profit           int64             `json:"profit"`
	TransactionCount int               `json:"transaction_count"`
	AverageTicket    int64             `json:"average_ticket"`
	BestSellers      []ProductSales    `json:"best_sellers"`
	Categories       []CategoryRevenue `json:"categories"`
	Daily            []DailySales      `json:"daily"`
}

// Summarize aggregates the transactions that fall inside period.
//
// Profit and category revenue are computed against the products passed in,
// using their current cost price. Items whose product is no longer in the
// list add nothing to either figure but still count toward revenue and best
// sellers, which only need the item snapshot.
func Summarize(txs []model.Transaction, products []model.Product, period Period, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	loc := period.Start.Location()

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sum := Summary{Period: period}
	sales := make(map[uuid.UUID]*ProductSales)
	categories := make(map[string]int64)
	days := make(map[time.Time]int64)

	for _, tx := range txs {
		if !period.Contains(tx.CreatedAt) {
			continue
		}
		sum.Revenue += tx.Total
		sum.TransactionCount++

		local := tx.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		days[day] += tx.Total

		for _, item := range tx.Items {
			ps, ok := sales[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Name: item.ProductName}
				sales[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue += item.TotalPrice

			if p, ok := byID[item.ProductID]; ok {
				sum.Profit += (item.UnitPrice - p.CostPrice) * int64(item.Quantity)
				categories[p.Category] += item.TotalPrice
			}
		}
	}

	if sum.TransactionCount > 0 {
		sum.AverageTicket = sum.Revenue / int64(sum.TransactionCount)
	}

	sum.BestSellers = make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		sum.BestSellers = append(sum.BestSellers, *ps)
	}
	sort.Slice(sum.BestSellers, func(i, j int) bool {
		a, b := sum.BestSellers[i], sum.BestSellers[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Name < b.Name
	})
	if len(sum.BestSellers) > topN {
		sum.BestSellers = sum.BestSellers[:topN]
	}

	sum.Categories = make([]CategoryRevenue, 0, len(categories))
	for c, rev := range categories {
		sum.Categories = append(sum.Categories, CategoryRevenue{Category: c, Revenue: rev})
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		if sum.Categories[i].Revenue != sum.Categories[j].Revenue {
			return sum.Categories[i].Revenue > sum.Categories[j].Revenue
		}
		return sum.Categories[i].Category < sum.Categories[j].Category
	})

	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	sum.Daily = make([]DailySales, 0, len(keys))
	for _, d := range keys {
		sum.Daily = append(sum.Daily, DailySales{Date: d.Format(DayFormat), Total: days[d]})
	}

	return sum
}

// LowStock returns the products at or below their threshold, emptiest first.
func LowStock(products []model.Product) []model.Product {
	out := make([]model.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

type DashboardStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"` // stock at cost price
}

func Stats(products []model.Product) DashboardStats {
	var s DashboardStats
	for _, p := range products {
		s.TotalProducts++
		if p.IsLowStock() {
			s.LowStockCount++
		}
		s.TotalValuation += p.CostPrice * int64(p.Stock)
	}
	return s
}

type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// StockMovement buckets ledger entries into one point per local day for the
// `days` days ending on now's day. Days without movement are reported as zero.
// Applied quantities are used so the chart matches the stock actually moved.
func StockMovement(logs []model.StockLog, now time.Time, days int, loc *time.Location) []StockMovementData {
	if days <= 0 {
		return []StockMovementData{}
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(days - 1))

	out := make([]StockMovementData, days)
	index := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		d := first.AddDate(0, 0, i)
		out[i].Date = d.Format(DayFormat)
		index[d] = i
	}

	for _, l := range logs {
		local := l.CreatedAt.In(loc)
		d := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		i, ok := index[d]
		if !ok {
			continue
		}
		switch l.Type {
		case model.StockIn:
			out[i].Inbound += l.AppliedQuantity
		case model.StockOut:
			out[i].Outbound += l.AppliedQuantity
		}
	}
	return out
}

// MovementWindow returns the period StockMovement covers, for loading logs.
func MovementWindow(now time.Time, days int, loc *time.Location) Period {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return Period{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}
