// Package wire holds the JSON-friendly request/order shapes the
// cmd/routefinder-server and cmd/routefinder-cli wrappers decode, kept
// separate from the core domain types so the library itself never
// depends on a wire format (spec.md §6).
package wire

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// OrderWire is the JSON shape of one order-book entry accepted over the
// HTTP and CLI wrappers.
type OrderWire struct {
	ID            string `json:"id"`
	Side          string `json:"side"`
	Base          string `json:"base"`
	Quote         string `json:"quote"`
	MinBase       string `json:"minBase"`
	MaxBase       string `json:"maxBase"`
	BaseScale     int32  `json:"baseScale"`
	Rate          string `json:"rate"`
	RateScale     int32  `json:"rateScale"`
	BaseFeeRate   string `json:"baseFeeRate,omitempty"`
	QuoteFeeRate  string `json:"quoteFeeRate,omitempty"`
	FeeRateScale  int32  `json:"feeRateScale,omitempty"`
}

// ToOrder builds an *orderbook.Order from the wire representation,
// defaulting an absent fee-rate pair to feepolicy.NoFeePolicy.
func (w OrderWire) ToOrder() (*orderbook.Order, error) {
	side := orderbook.SideBuy
	switch w.Side {
	case string(orderbook.SideBuy):
		side = orderbook.SideBuy
	case string(orderbook.SideSell):
		side = orderbook.SideSell
	default:
		return nil, fmt.Errorf("wire: order %s has invalid side %q", w.ID, w.Side)
	}

	pair, err := money.NewAssetPair(w.Base, w.Quote)
	if err != nil {
		return nil, err
	}

	minBase, err := decimal.NewFromString(w.MinBase, w.BaseScale)
	if err != nil {
		return nil, err
	}
	maxBase, err := decimal.NewFromString(w.MaxBase, w.BaseScale)
	if err != nil {
		return nil, err
	}
	minMoney, err := money.New(pair.Base, minBase)
	if err != nil {
		return nil, err
	}
	maxMoney, err := money.New(pair.Base, maxBase)
	if err != nil {
		return nil, err
	}

	rateScale := w.RateScale
	if rateScale == 0 {
		rateScale = 8
	}
	rateAmount, err := decimal.NewFromString(w.Rate, rateScale)
	if err != nil {
		return nil, err
	}
	rate, err := money.NewExchangeRate(pair.Base, pair.Quote, rateAmount)
	if err != nil {
		return nil, err
	}

	policy, err := w.toFeePolicy()
	if err != nil {
		return nil, err
	}

	return orderbook.New(w.ID, side, pair, orderbook.Bounds{Min: minMoney, Max: maxMoney}, rate, policy)
}

func (w OrderWire) toFeePolicy() (feepolicy.FeePolicy, error) {
	if w.BaseFeeRate == "" && w.QuoteFeeRate == "" {
		return feepolicy.NoFeePolicy{}, nil
	}
	scale := w.FeeRateScale
	if scale == 0 {
		scale = 4
	}
	baseRate, err := decimal.Zero(scale)
	if err != nil {
		return nil, err
	}
	if w.BaseFeeRate != "" {
		baseRate, err = decimal.NewFromString(w.BaseFeeRate, scale)
		if err != nil {
			return nil, err
		}
	}
	quoteRate, err := decimal.Zero(scale)
	if err != nil {
		return nil, err
	}
	if w.QuoteFeeRate != "" {
		quoteRate, err = decimal.NewFromString(w.QuoteFeeRate, scale)
		if err != nil {
			return nil, err
		}
	}
	return feepolicy.PercentageFeePolicy{BaseFeeRate: baseRate, QuoteFeeRate: quoteRate}, nil
}
