package checkout

import (
	"math"
	"testing"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name string, price int64, stock int) model.Product {
	p := model.Product{Name: name, Category: "Sembako", SellPrice: price, Stock: stock}
	p.ID = uuid.New()
	return p
}

func TestComputeTotals_Discount(t *testing.T) {
	lines := []Line{{UnitPrice: 25000, Quantity: 2}}

	totals := ComputeTotals(lines, 10)

	assert.Equal(t, int64(50000), totals.Subtotal)
	assert.Equal(t, int64(5000), totals.DiscountAmount)
	assert.Equal(t, int64(45000), totals.Total)
	assert.Equal(t, 10, totals.DiscountPercent)
}

func TestComputeTotals_RoundsDiscountDown(t *testing.T) {
	lines := []Line{{UnitPrice: 999, Quantity: 1}}

	totals := ComputeTotals(lines, 15)

	// 149.85 -> 149
	assert.Equal(t, int64(149), totals.DiscountAmount)
	assert.Equal(t, int64(850), totals.Total)
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil, 0))
}

func TestSession_AddItemMergesDuplicates(t *testing.T) {
	s := NewSession()
	p := product("Aqua 600ml", 4000, 10)

	require.NoError(t, s.AddItem(p, 3))
	require.NoError(t, s.AddItem(p, 4))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
	assert.Equal(t, int64(28000), s.Totals().Total)
}

func TestSession_AddItemRejectsBeyondStock(t *testing.T) {
	s := NewSession()
	p := product("Marlboro Red", 35000, 5)

	assert.ErrorIs(t, s.AddItem(p, 6), ErrInsufficientStock)
	require.NoError(t, s.AddItem(p, 5))
	assert.ErrorIs(t, s.AddItem(p, 1), ErrInsufficientStock)
	assert.Equal(t, 5, s.Lines()[0].Quantity)
}

func TestSession_AddItemRejectsNonPositive(t *testing.T) {
	s := NewSession()
	p := product("Aqua 600ml", 4000, 10)

	assert.ErrorIs(t, s.AddItem(p, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, s.AddItem(p, -2), ErrInvalidQuantity)
	assert.True(t, s.IsEmpty())
}

func TestSession_SetQuantity(t *testing.T) {
	s := NewSession()
	a := product("Beras Premium 5kg", 75000, 4)
	b := product("Minyak Goreng 1L", 18000, 20)
	require.NoError(t, s.AddItem(a, 1))
	require.NoError(t, s.AddItem(b, 2))

	require.NoError(t, s.SetQuantity(a.ID, 4))
	assert.ErrorIs(t, s.SetQuantity(a.ID, 5), ErrInsufficientStock)
	assert.ErrorIs(t, s.SetQuantity(uuid.New(), 1), ErrLineNotFound)

	require.NoError(t, s.SetQuantity(b.ID, 0))
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, a.ID, lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestSession_KeepsCartOrder(t *testing.T) {
	s := NewSession()
	names := []string{"C", "A", "B"}
	for _, n := range names {
		require.NoError(t, s.AddItem(product(n, 1000, 9), 1))
	}

	var got []string
	for _, l := range s.Lines() {
		got = append(got, l.Name)
	}
	assert.Equal(t, names, got)
}

func TestSession_DiscountAndPayment(t *testing.T) {
	s := NewSession()
	assert.Equal(t, model.PaymentCash, s.PaymentMethod())

	assert.ErrorIs(t, s.SetDiscount(101), ErrInvalidDiscount)
	assert.ErrorIs(t, s.SetDiscount(-1), ErrInvalidDiscount)
	require.NoError(t, s.SetDiscount(100))
	assert.Equal(t, 100, s.DiscountPercent())

	assert.ErrorIs(t, s.SetPaymentMethod("card"), ErrInvalidPaymentMethod)
	require.NoError(t, s.SetPaymentMethod(model.PaymentNonCash))

	require.NoError(t, s.AddItem(product("X", 5000, 1), 1))
	assert.Equal(t, int64(0), s.Totals().Total)

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.DiscountPercent())
	assert.Equal(t, model.PaymentCash, s.PaymentMethod())
}

func TestSession_LinesIsACopy(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.AddItem(product("X", 5000, 3), 1))

	lines := s.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestDiscountNote(t *testing.T) {
	assert.Equal(t, "", DiscountNote(0, ""))
	assert.Equal(t, "meja 4", DiscountNote(0, "meja 4"))
	assert.Equal(t, "Diskon: 10%", DiscountNote(10, ""))
	assert.Equal(t, "Diskon: 10% - meja 4", DiscountNote(10, "meja 4"))
}

func TestSession_AddItemBoundsMergedQuantity(t *testing.T) {
	s := NewSession()
	p := product("Aqua", 3500, 2*model.MaxQuantity)

	assert.ErrorIs(t, s.AddItem(p, math.MaxInt), ErrInvalidQuantity)
	require.NoError(t, s.AddItem(p, model.MaxQuantity))
	assert.ErrorIs(t, s.AddItem(p, 1), ErrInvalidQuantity)
	assert.ErrorIs(t, s.AddItem(p, math.MaxInt), ErrInvalidQuantity)
	assert.ErrorIs(t, s.SetQuantity(p.ID, model.MaxQuantity+1), ErrInvalidQuantity)

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, model.MaxQuantity, s.Lines()[0].Quantity)
	assert.Positive(t, s.Totals().Total)
}
