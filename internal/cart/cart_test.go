package cart

import (
	"testing"
	"time"

	"github.com/abgdnv/gocheckout/internal/catalog"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cheese   *catalog.Perishable
	biscuits *catalog.Perishable
	tv       *catalog.Boxed
	card     *catalog.Digital
	expired  *catalog.Perishable
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	now := time.Now()
	cheese, err := catalog.NewPerishable("Cheese", decimal.NewFromInt(100), 10, decimal.RequireFromString("0.2"), now.AddDate(0, 0, 30))
	require.NoError(t, err)
	biscuits, err := catalog.NewPerishable("Biscuits", decimal.NewFromInt(150), 5, decimal.RequireFromString("0.7"), now.AddDate(0, 0, 60))
	require.NoError(t, err)
	tv, err := catalog.NewBoxed("TV", decimal.NewFromInt(500), 3, decimal.NewFromInt(15))
	require.NoError(t, err)
	card, err := catalog.NewDigital("Mobile Scratch Card", decimal.NewFromInt(50), 20)
	require.NoError(t, err)
	expired, err := catalog.NewPerishable("Yogurt", decimal.NewFromInt(20), 10, decimal.RequireFromString("0.1"), now.AddDate(0, 0, -2))
	require.NoError(t, err)
	return fixture{cheese: cheese, biscuits: biscuits, tv: tv, card: card, expired: expired}
}

func Test_Add(t *testing.T) {
	f := newFixture(t)
	testCases := []struct {
		name        string
		product     catalog.Product
		quantity    int
		expectedErr error
	}{
		{name: "within stock", product: f.tv, quantity: 3},
		{name: "above stock", product: f.tv, quantity: 10, expectedErr: checkouterrors.ErrInvalidItem},
		{name: "expired", product: f.expired, quantity: 1, expectedErr: checkouterrors.ErrInvalidItem},
		{name: "zero quantity", product: f.card, quantity: 0, expectedErr: checkouterrors.ErrInvalidItem},
		{name: "negative quantity", product: f.card, quantity: -1, expectedErr: checkouterrors.ErrInvalidItem},
		{name: "nil product", product: nil, quantity: 1, expectedErr: checkouterrors.ErrInvalidItem},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := New(uuid.New())

			// when
			err := c.Add(tc.product, tc.quantity)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.True(t, c.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, c.Len())
		})
	}
}

func Test_Add_RejectionLeavesStock(t *testing.T) {
	// given
	f := newFixture(t)
	c := New(uuid.New())

	// when
	err := c.Add(f.tv, 10)

	// then
	assert.ErrorIs(t, err, checkouterrors.ErrInvalidItem)
	assert.Equal(t, 3, f.tv.Stock())
}

func Test_Add_Merge(t *testing.T) {
	testCases := []struct {
		name             string
		first, second    int
		expectedQuantity int
		expectedErr      error
	}{
		{name: "sum within stock", first: 2, second: 1, expectedQuantity: 3},
		{name: "second exceeds stock on its own", first: 2, second: 4, expectedQuantity: 2, expectedErr: checkouterrors.ErrInvalidItem},
		{name: "sum exceeds stock", first: 2, second: 2, expectedQuantity: 2, expectedErr: checkouterrors.ErrInvalidItem},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t)
			c := New(uuid.New())
			require.NoError(t, c.Add(f.tv, tc.first))

			// when
			err := c.Add(f.tv, tc.second)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, c.Len())
			assert.Equal(t, tc.expectedQuantity, c.Quantity("TV"))
		})
	}
}

func Test_Add_MergeByName(t *testing.T) {
	// given
	f := newFixture(t)
	other, err := catalog.NewBoxed("TV", decimal.NewFromInt(999), 100, decimal.NewFromInt(20))
	require.NoError(t, err)
	c := New(uuid.New())
	require.NoError(t, c.Add(f.tv, 1))

	// when
	err = c.Add(other, 1)

	// then
	require.NoError(t, err)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Same(t, f.tv, lines[0].Product, "first instance keeps the line")
}

func Test_Lines_InsertionOrder(t *testing.T) {
	// given
	f := newFixture(t)
	c := New(uuid.New())
	require.NoError(t, c.Add(f.tv, 1))
	require.NoError(t, c.Add(f.cheese, 2))
	require.NoError(t, c.Add(f.card, 1))
	require.NoError(t, c.Add(f.tv, 1))

	// when
	lines := c.Lines()

	// then
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.Product.Name())
	}
	assert.Equal(t, []string{"TV", "Cheese", "Mobile Scratch Card"}, names)
}

func Test_Subtotal(t *testing.T) {
	// given
	f := newFixture(t)
	forward := New(uuid.New())
	require.NoError(t, forward.Add(f.cheese, 2))
	require.NoError(t, forward.Add(f.biscuits, 1))
	require.NoError(t, forward.Add(f.tv, 1))
	backward := New(uuid.New())
	require.NoError(t, backward.Add(f.tv, 1))
	require.NoError(t, backward.Add(f.biscuits, 1))
	require.NoError(t, backward.Add(f.cheese, 2))

	// when
	first := forward.Subtotal()
	second := forward.Subtotal()

	// then
	assert.True(t, decimal.NewFromInt(850).Equal(first), "subtotal: %s", first)
	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(backward.Subtotal()))
}

func Test_Subtotal_Exact(t *testing.T) {
	// given
	a, _ := catalog.NewDigital("A", decimal.RequireFromString("0.1"), 10)
	b, _ := catalog.NewDigital("B", decimal.RequireFromString("0.2"), 10)
	c := New(uuid.New())
	require.NoError(t, c.Add(a, 1))
	require.NoError(t, c.Add(b, 1))

	// then
	assert.Equal(t, "0.3", c.Subtotal().String())
}

func Test_ShipmentUnits(t *testing.T) {
	// given
	f := newFixture(t)
	c := New(uuid.New())
	require.NoError(t, c.Add(f.cheese, 2))
	require.NoError(t, c.Add(f.card, 5))
	require.NoError(t, c.Add(f.tv, 1))

	// when
	units := c.ShipmentUnits()
	again := c.ShipmentUnits()

	// then
	require.Len(t, units, 3)
	assert.Equal(t, "Cheese", units[0].Name())
	assert.Equal(t, "Cheese", units[1].Name())
	assert.Equal(t, "TV", units[2].Name())
	assert.Equal(t, units, again)
}

func Test_Snapshots(t *testing.T) {
	// given
	f := newFixture(t)
	c := New(uuid.New())
	require.NoError(t, c.Add(f.tv, 1))

	// when
	lines := c.Lines()
	lines[0].Quantity = 99
	units := c.ShipmentUnits()
	units[0] = f.cheese

	// then
	assert.Equal(t, 1, c.Quantity("TV"))
	assert.Equal(t, "TV", c.ShipmentUnits()[0].Name())
}

func Test_Clear(t *testing.T) {
	// given
	f := newFixture(t)
	c := New(uuid.New())
	require.NoError(t, c.Add(f.tv, 1))

	// when
	c.Clear()

	// then
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Quantity("TV"))
	require.NoError(t, c.Add(f.tv, 1))
	assert.Equal(t, 1, c.Len())
}
