package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount parses a monetary string leniently: blank or unparsable input
// counts as zero. Paper forms arrive with empty cells and the aggregation
// endpoints must not fail the whole request over one bad cell.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseCount parses an integer count with the same lenient semantics.
func ParseCount(s string) int {
	return int(ParseAmount(s).IntPart())
}
