// Package money implements the Money, AssetPair, ExchangeRate, and
// MoneyMap value objects that sit on top of pkg/decimal. Every amount
// carries an explicit currency and scale; amounts are never negative.
package money

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mExOms/routefinder/pkg/decimal"
)

// Money is a non-negative exact-decimal amount denominated in a
// currency, at a fixed scale.
type Money struct {
	Currency string
	Amount   decimal.Decimal
}

// New validates the currency and the non-negative invariant.
func New(currency string, amount decimal.Decimal) (Money, error) {
	currency = NormalizeCurrency(currency)
	if err := ValidateCurrency(currency); err != nil {
		return Money{}, err
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("money: negative amount %s %s", amount.String(), currency)
	}
	return Money{Currency: currency, Amount: amount}, nil
}

// NormalizeCurrency uppercases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency enforces the UpperAlpha[3..12] shape from spec.md §3.
func ValidateCurrency(currency string) error {
	if len(currency) < 3 || len(currency) > 12 {
		return fmt.Errorf("money: currency %q must be 3-12 characters", currency)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("money: currency %q must be upper-alpha", currency)
		}
	}
	return nil
}

// Scale returns the money's decimal scale.
func (m Money) Scale() int32 { return m.Amount.Scale() }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) requireSameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("money: currency mismatch %s vs %s", m.Currency, other.Currency)
	}
	return nil
}

// Add requires matching currency; mirrors Decimal.Add's scale rule.
func (m Money) Add(other Money, overrideScale int32) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	sum, err := m.Amount.Add(other.Amount, overrideScale)
	if err != nil {
		return Money{}, err
	}
	return New(m.Currency, sum)
}

// Sub requires matching currency; result must remain non-negative.
func (m Money) Sub(other Money, overrideScale int32) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	diff, err := m.Amount.Sub(other.Amount, overrideScale)
	if err != nil {
		return Money{}, err
	}
	return New(m.Currency, diff)
}

// Cmp compares two Money values of the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

// MustNew panics on error; reserved for tests and compile-time constants.
func MustNew(currency string, amount decimal.Decimal) Money {
	m, err := New(currency, amount)
	if err != nil {
		panic(err)
	}
	return m
}

// moneyJSON mirrors spec.md §6's stable wire form: amount is always a
// string, never a JSON number, to preserve precision.
type moneyJSON struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Scale    int32  `json:"scale"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Currency: m.Currency,
		Amount:   m.Amount.String(),
		Scale:    m.Scale(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount, raw.Scale)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", raw.Amount, err)
	}
	built, err := New(raw.Currency, amount)
	if err != nil {
		return err
	}
	*m = built
	return nil
}

// AssetPair is a base/quote currency pair, distinct after normalization.
type AssetPair struct {
	Base  string
	Quote string
}

// NewAssetPair validates both legs and their distinctness.
func NewAssetPair(base, quote string) (AssetPair, error) {
	base = NormalizeCurrency(base)
	quote = NormalizeCurrency(quote)
	if err := ValidateCurrency(base); err != nil {
		return AssetPair{}, err
	}
	if err := ValidateCurrency(quote); err != nil {
		return AssetPair{}, err
	}
	if base == quote {
		return AssetPair{}, fmt.Errorf("money: asset pair base and quote must differ (%s)", base)
	}
	return AssetPair{Base: base, Quote: quote}, nil
}

func (p AssetPair) String() string {
	return p.Base + "/" + p.Quote
}

// ExchangeRate converts an amount in BaseCurrency into QuoteCurrency.
type ExchangeRate struct {
	BaseCurrency  string
	QuoteCurrency string
	Rate          decimal.Decimal
}

// NewExchangeRate validates a positive rate and distinct currencies.
func NewExchangeRate(base, quote string, rate decimal.Decimal) (ExchangeRate, error) {
	pair, err := NewAssetPair(base, quote)
	if err != nil {
		return ExchangeRate{}, err
	}
	if rate.Sign() <= 0 {
		return ExchangeRate{}, fmt.Errorf("money: exchange rate must be positive, got %s", rate.String())
	}
	return ExchangeRate{BaseCurrency: pair.Base, QuoteCurrency: pair.Quote, Rate: rate}, nil
}

// Convert projects baseAmount (in BaseCurrency) into QuoteCurrency at
// the given output scale.
func (r ExchangeRate) Convert(baseAmount Money, scale int32) (Money, error) {
	if baseAmount.Currency != r.BaseCurrency {
		return Money{}, fmt.Errorf("money: convert expects currency %s, got %s", r.BaseCurrency, baseAmount.Currency)
	}
	quoteAmount, err := baseAmount.Amount.Mul(r.Rate, scale)
	if err != nil {
		return Money{}, err
	}
	return New(r.QuoteCurrency, quoteAmount)
}

// Invert swaps base/quote and computes 1/rate at the same scale as the
// receiver's rate.
func (r ExchangeRate) Invert() (ExchangeRate, error) {
	one, err := decimal.NewFromInt(1, r.Rate.Scale())
	if err != nil {
		return ExchangeRate{}, err
	}
	inverted, err := one.Div(r.Rate, r.Rate.Scale())
	if err != nil {
		return ExchangeRate{}, err
	}
	return NewExchangeRate(r.QuoteCurrency, r.BaseCurrency, inverted)
}

// MoneyMap sums Money values keyed by currency.
type MoneyMap struct {
	byCurrency map[string]Money
}

// NewMoneyMap returns an empty MoneyMap.
func NewMoneyMap() *MoneyMap {
	return &MoneyMap{byCurrency: make(map[string]Money)}
}

// Add accumulates m into the map, widening scale to the wider of the
// existing entry (if any) and m.
func (mm *MoneyMap) Add(m Money) error {
	existing, ok := mm.byCurrency[m.Currency]
	if !ok {
		mm.byCurrency[m.Currency] = m
		return nil
	}
	sum, err := existing.Add(m, -1)
	if err != nil {
		return err
	}
	mm.byCurrency[m.Currency] = sum
	return nil
}

// Get returns the accumulated Money for a currency, or false if absent.
func (mm *MoneyMap) Get(currency string) (Money, bool) {
	m, ok := mm.byCurrency[NormalizeCurrency(currency)]
	return m, ok
}

// Currencies returns the map's currencies in ascending order.
func (mm *MoneyMap) Currencies() []string {
	keys := make([]string, 0, len(mm.byCurrency))
	for k := range mm.byCurrency {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON renders the map as an object keyed by currency, ascending.
func (mm *MoneyMap) MarshalJSON() ([]byte, error) {
	if mm == nil {
		return []byte("{}"), nil
	}
	ordered := make(map[string]Money, len(mm.byCurrency))
	for k, v := range mm.byCurrency {
		ordered[k] = v
	}
	// encoding/json already sorts map keys for object output, but we
	// keep Currencies() as the source of truth for any caller that
	// needs deterministic iteration outside of JSON encoding.
	return json.Marshal(ordered)
}
