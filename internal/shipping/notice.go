package shipping

import (
	"fmt"
	"io"
	"strings"

	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/shopspring/decimal"
)

var gramsPerKg = decimal.NewFromInt(1000)

// Group is one product line of a shipment notice.
type Group struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	WeightG int64  `json:"weight_g"`
}

// Notice lists shipped units grouped by product name in first-seen order.
type Notice struct {
	Groups        []Group         `json:"groups"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
}

// BuildNotice groups units by name. Group weight is unit weight times count in grams, truncated.
func BuildNotice(units []catalog.Shippable) *Notice {
	type acc struct {
		count    int
		weightKg decimal.Decimal
	}
	var order []string
	groups := make(map[string]*acc)
	for _, u := range units {
		g, ok := groups[u.Name()]
		if !ok {
			g = &acc{weightKg: u.WeightKg()}
			groups[u.Name()] = g
			order = append(order, u.Name())
		}
		g.count++
	}

	notice := &Notice{Groups: make([]Group, 0, len(order)), TotalWeightKg: totalWeight(units)}
	for _, name := range order {
		g := groups[name]
		grams := g.weightKg.Mul(decimal.NewFromInt(int64(g.count))).Mul(gramsPerKg)
		notice.Groups = append(notice.Groups, Group{Name: name, Count: g.count, WeightG: grams.IntPart()})
	}
	return notice
}

// WriteTo prints the notice in its text form.
func (n *Notice) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString("** Shipment notice **\n")
	for _, g := range n.Groups {
		b.WriteString(fmt.Sprintf("%dx %s %dg\n", g.Count, g.Name, g.WeightG))
	}
	b.WriteString(fmt.Sprintf("Total package weight %skg\n", formatKg(n.TotalWeightKg)))
	written, err := io.WriteString(w, b.String())
	return int64(written), err
}

func (n *Notice) String() string {
	var b strings.Builder
	_, _ = n.WriteTo(&b)
	return b.String()
}

// formatKg prints the weight untruncated, always with a fractional part.
func formatKg(kg decimal.Decimal) string {
	s := kg.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
