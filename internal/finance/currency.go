package finance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andy/studioledger/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// Converter turns ledger amounts into a display currency. Rates are units of
// each currency per common base unit. Results are for display only.
type Converter struct {
	rates map[string]decimal.Decimal
}

// NewConverter validates rates and normalizes currency codes to upper case.
func NewConverter(rates map[string]decimal.Decimal) (*Converter, error) {
	c := &Converter{rates: make(map[string]decimal.Decimal, len(rates))}
	for code, rate := range rates {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		c.rates[strings.ToUpper(code)] = rate
	}
	return c, nil
}

// Convert computes amount / rate[source] * rate[target], rounded to cents.
func (c *Converter) Convert(amount decimal.Decimal, source, target string) (decimal.Decimal, error) {
	source, target = strings.ToUpper(source), strings.ToUpper(target)
	if source == target {
		return amount, nil
	}
	from, ok := c.rates[source]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, source)
	}
	to, ok := c.rates[target]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, target)
	}
	return domain.RoundMoney(amount.Div(from).Mul(to)), nil
}
