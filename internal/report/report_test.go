package report

import (
	"testing"
	"time"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*3600)

func TestWindow(t *testing.T) {
	// Wednesday 2024-05-15 01:30 WIB, still Tuesday in UTC
	now := time.Date(2024, 5, 14, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		r     Range
		start time.Time
		end   time.Time
	}{
		{RangeToday, time.Date(2024, 5, 15, 0, 0, 0, 0, wib), time.Date(2024, 5, 16, 0, 0, 0, 0, wib)},
		{RangeWeek, time.Date(2024, 5, 12, 0, 0, 0, 0, wib), time.Date(2024, 5, 19, 0, 0, 0, 0, wib)},
		{RangeMonth, time.Date(2024, 5, 1, 0, 0, 0, 0, wib), time.Date(2024, 6, 1, 0, 0, 0, 0, wib)},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			p, err := Window(tt.r, now, wib)
			require.NoError(t, err)
			assert.True(t, p.Start.Equal(tt.start), "start %s", p.Start)
			assert.True(t, p.End.Before(tt.end))
			assert.True(t, p.End.Add(time.Nanosecond).Equal(tt.end))
		})
	}

	_, err := Window("year", now, wib)
	assert.Error(t, err)
}

func TestWindow_WeekStartsSunday(t *testing.T) {
	sunday := time.Date(2024, 5, 12, 10, 0, 0, 0, wib)

	p, err := Window(RangeWeek, sunday, wib)

	require.NoError(t, err)
	assert.True(t, p.Start.Equal(time.Date(2024, 5, 12, 0, 0, 0, 0, wib)))
}

func sale(at time.Time, items ...model.TransactionItem) model.Transaction {
	tx := model.Transaction{}
	tx.ID = uuid.New()
	tx.CreatedAt = at
	for i := range items {
		items[i].LineNo = i + 1
		items[i].TotalPrice = items[i].UnitPrice * int64(items[i].Quantity)
		tx.Total += items[i].TotalPrice
	}
	tx.Items = items
	return tx
}

func TestSummarize(t *testing.T) {
	rice := model.Product{Name: "Beras Premium 5kg", Category: "Sembako", CostPrice: 60000}
	rice.ID = uuid.New()
	water := model.Product{Name: "Aqua 600ml", Category: "Minuman", CostPrice: 2500}
	water.ID = uuid.New()
	gone := uuid.New()

	period, err := Window(RangeMonth, time.Date(2024, 5, 20, 12, 0, 0, 0, wib), wib)
	require.NoError(t, err)

	txs := []model.Transaction{
		sale(time.Date(2024, 5, 3, 9, 0, 0, 0, wib),
			model.TransactionItem{ProductID: rice.ID, ProductName: rice.Name, Quantity: 1, UnitPrice: 75000},
			model.TransactionItem{ProductID: water.ID, ProductName: water.Name, Quantity: 4, UnitPrice: 4000},
		),
		sale(time.Date(2024, 5, 3, 20, 0, 0, 0, wib),
			model.TransactionItem{ProductID: water.ID, ProductName: water.Name, Quantity: 2, UnitPrice: 4000},
		),
		sale(time.Date(2024, 5, 10, 8, 0, 0, 0, wib),
			model.TransactionItem{ProductID: gone, ProductName: "Rokok Lama", Quantity: 1, UnitPrice: 20000},
		),
		// outside the window
		sale(time.Date(2024, 4, 30, 23, 59, 0, 0, wib),
			model.TransactionItem{ProductID: rice.ID, ProductName: rice.Name, Quantity: 9, UnitPrice: 75000},
		),
	}

	s := Summarize(txs, []model.Product{rice, water}, period, 0)

	assert.Equal(t, int64(75000+16000+8000+20000), s.Revenue)
	assert.Equal(t, 3, s.TransactionCount)
	assert.Equal(t, s.Revenue/3, s.AverageTicket)
	// deleted product contributes no profit
	assert.Equal(t, int64(15000+6*1500), s.Profit)

	require.Len(t, s.BestSellers, 3)
	assert.Equal(t, water.ID, s.BestSellers[0].ProductID)
	assert.Equal(t, 6, s.BestSellers[0].Quantity)
	assert.Equal(t, int64(24000), s.BestSellers[0].Revenue)

	assert.Equal(t, []CategoryRevenue{
		{Category: "Sembako", Revenue: 75000},
		{Category: "Minuman", Revenue: 24000},
	}, s.Categories)

	assert.Equal(t, []DailySales{
		{Date: "03/05", Total: 99000},
		{Date: "10/05", Total: 20000},
	}, s.Daily)
}

func TestSummarize_TopN(t *testing.T) {
	var txs []model.Transaction
	at := time.Date(2024, 5, 3, 9, 0, 0, 0, wib)
	for q := 1; q <= 7; q++ {
		txs = append(txs, sale(at, model.TransactionItem{ProductID: uuid.New(), ProductName: "p", Quantity: q, UnitPrice: 100}))
	}
	period, _ := Window(RangeToday, at, wib)

	s := Summarize(txs, nil, period, 0)

	require.Len(t, s.BestSellers, DefaultTopN)
	assert.Equal(t, 7, s.BestSellers[0].Quantity)
	assert.Equal(t, 3, s.BestSellers[4].Quantity)
	assert.Empty(t, s.Categories)
}

func TestLowStockAndStats(t *testing.T) {
	products := []model.Product{
		{Name: "A", Stock: 10, MinStock: 5, CostPrice: 1000},
		{Name: "B", Stock: 5, MinStock: 5, CostPrice: 2000},
		{Name: "C", Stock: 0, MinStock: 2, CostPrice: 500},
	}

	low := LowStock(products)
	require.Len(t, low, 2)
	assert.Equal(t, "C", low[0].Name)
	assert.Equal(t, "B", low[1].Name)

	assert.Equal(t, DashboardStats{TotalProducts: 3, LowStockCount: 2, TotalValuation: 20000}, Stats(products))
}

func TestStockMovement(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, wib)
	logs := []model.StockLog{
		{Type: model.StockIn, AppliedQuantity: 10},
		{Type: model.StockOut, Quantity: 5, AppliedQuantity: 3},
		{Type: model.StockOut, AppliedQuantity: 2},
		{Type: model.StockIn, AppliedQuantity: 99}, // too old
	}
	logs[0].CreatedAt = time.Date(2024, 5, 13, 8, 0, 0, 0, wib)
	logs[1].CreatedAt = time.Date(2024, 5, 15, 9, 0, 0, 0, wib)
	// 2024-05-14 20:00 UTC is 15/05 03:00 in WIB
	logs[2].CreatedAt = time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC)
	logs[3].CreatedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, wib)

	data := StockMovement(logs, now, 3, wib)

	assert.Equal(t, []StockMovementData{
		{Date: "13/05", Inbound: 10},
		{Date: "14/05"},
		{Date: "15/05", Outbound: 5},
	}, data)

	w := MovementWindow(now, 3, wib)
	assert.True(t, w.Start.Equal(time.Date(2024, 5, 13, 0, 0, 0, 0, wib)))
	assert.True(t, w.Contains(now))
}
