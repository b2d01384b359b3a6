package store

import (
	"testing"

	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/customer"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDigital(t *testing.T, name string) catalog.Product {
	t.Helper()
	p, err := catalog.NewDigital(name, decimal.NewFromInt(10), 1)
	require.NoError(t, err)
	return p
}

func Test_ProductStore_CreateAndFind(t *testing.T) {
	// given
	s := NewInMemoryProductStore()
	require.NoError(t, s.Create(newDigital(t, "Voucher")))

	// when
	found, err := s.FindByName("Voucher")

	// then
	require.NoError(t, err)
	assert.Equal(t, "Voucher", found.Name())

	_, err = s.FindByName("voucher")
	assert.ErrorIs(t, err, checkouterrors.ErrProductNotFound)
}

func Test_ProductStore_CreateDuplicate(t *testing.T) {
	// given
	s := NewInMemoryProductStore()
	require.NoError(t, s.Create(newDigital(t, "Voucher")))

	// when
	err := s.Create(newDigital(t, "Voucher"))

	// then
	assert.ErrorIs(t, err, checkouterrors.ErrProductExists)
}

func Test_ProductStore_FindAll(t *testing.T) {
	s := NewInMemoryProductStore()
	for _, name := range []string{"TV", "Cheese", "Biscuits", "Scratch Card"} {
		require.NoError(t, s.Create(newDigital(t, name)))
	}

	testCases := []struct {
		name     string
		offset   int
		limit    int
		expected []string
	}{
		{name: "all, sorted by name", offset: 0, limit: 0, expected: []string{"Biscuits", "Cheese", "Scratch Card", "TV"}},
		{name: "first page", offset: 0, limit: 2, expected: []string{"Biscuits", "Cheese"}},
		{name: "second page", offset: 2, limit: 2, expected: []string{"Scratch Card", "TV"}},
		{name: "limit past the end", offset: 3, limit: 10, expected: []string{"TV"}},
		{name: "offset past the end", offset: 4, limit: 10, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			list := s.FindAll(tc.offset, tc.limit)

			// then
			names := make([]string, 0, len(list))
			for _, p := range list {
				names = append(names, p.Name())
			}
			assert.Equal(t, tc.expected, names)
		})
	}
}

func Test_CustomerStore(t *testing.T) {
	// given
	s := NewInMemoryCustomerStore()
	c, err := customer.New("Alice", decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, s.Create(c))

	// when
	found, err := s.FindByID(c.ID())

	// then
	require.NoError(t, err)
	assert.Same(t, c, found)

	_, err = s.FindByID(uuid.New())
	assert.ErrorIs(t, err, checkouterrors.ErrCustomerNotFound)
}

func Test_CartStore(t *testing.T) {
	// given
	s := NewInMemoryCartStore()
	c := cart.New(uuid.New())
	require.NoError(t, s.Create(c))

	// when
	found, err := s.FindByID(c.ID())

	// then
	require.NoError(t, err)
	assert.Same(t, c, found)

	_, err = s.FindByID(uuid.New())
	assert.ErrorIs(t, err, checkouterrors.ErrCartNotFound)
}
