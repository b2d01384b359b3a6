package checkout

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abgdnv/gocheckout/internal/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const receiptSeparator = "----------------------"

// ReceiptLine is one purchased cart line.
type ReceiptLine struct {
	Quantity int             `json:"quantity"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
}

// Receipt is the result of a completed checkout.
type Receipt struct {
	OrderID      uuid.UUID        `json:"order_id"`
	CustomerID   uuid.UUID        `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
	Lines        []ReceiptLine    `json:"lines"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Shipping     decimal.Decimal  `json:"shipping"`
	Amount       decimal.Decimal  `json:"amount"`
	Balance      decimal.Decimal  `json:"balance"`
	Shipment     *shipping.Notice `json:"shipment,omitempty"`
	CompletedAt  time.Time        `json:"completed_at"`
}

// WriteTo prints the receipt. Every monetary figure is truncated toward zero.
func (r *Receipt) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString("** Checkout receipt **\n")
	for _, l := range r.Lines {
		b.WriteString(fmt.Sprintf("%dx %s %d\n", l.Quantity, l.Name, l.Total.IntPart()))
	}
	b.WriteString(receiptSeparator + "\n")
	b.WriteString(fmt.Sprintf("Subtotal %d\n", r.Subtotal.IntPart()))
	b.WriteString(fmt.Sprintf("Shipping %d\n", r.Shipping.IntPart()))
	b.WriteString(fmt.Sprintf("Amount %d\n", r.Amount.IntPart()))
	written, err := io.WriteString(w, b.String())
	return int64(written), err
}

// Text returns the printed form of the receipt.
func (r *Receipt) Text() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}
