package boosters

import "github.com/ukombozini/backoffice/internal/shared"

// valueCollection fills TotalValue from quantity and unit price when it is
// zero. A non-zero value is left alone even if the inputs changed since it was
// computed.
func valueCollection(c *AgricultureCollection) {
	if c.TotalValue.IsZero() {
		c.TotalValue = shared.Round2(c.Quantity.Mul(c.UnitPrice))
	}
}
