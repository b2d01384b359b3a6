package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Events(t *testing.T) {
	orderID := uuid.MustParse("0f8e2c8c-5d0e-4b7b-9a38-1f9a3c1e2d40")
	testCases := []struct {
		name            string
		event           messaging.Event
		expectedSubject string
		expectedField   string
	}{
		{
			name: "checkout completed",
			event: CheckoutCompletedEvent{
				OrderID:     orderID,
				Amount:      decimal.RequireFromString("1000.5"),
				CompletedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			},
			expectedSubject: messaging.CheckoutCompletedSubject,
			expectedField:   `"amount":"1000.5"`,
		},
		{
			name: "shipment requested",
			event: ShipmentRequestedEvent{
				OrderID: orderID,
				Items:   []ShipmentItem{{Name: "TV", Count: 1, WeightG: 15000}},
			},
			expectedSubject: messaging.ShipmentRequestedSubject,
			expectedField:   `"weight_g":15000`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			payload, err := tc.event.Payload()

			// then
			require.NoError(t, err)
			assert.True(t, json.Valid(payload))
			assert.Contains(t, string(payload), tc.expectedField)
			assert.Equal(t, tc.expectedSubject, tc.event.Subject())
			d, ok := tc.event.(messaging.Deduplicated)
			require.True(t, ok)
			assert.Equal(t, tc.expectedSubject+":"+orderID.String(), d.MsgID())
		})
	}
}
