package orders

import (
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// FeeBreakdown is the money split for one order line.
type FeeBreakdown struct {
	Total       decimal.Decimal
	Commission  decimal.Decimal
	DeliveryFee decimal.Decimal
	NetToFarmer decimal.Decimal
}

// FeePolicy computes the platform's cut for an order line. Implementations
// must be pure so a placement can be re-run safely.
type FeePolicy interface {
	Assess(unitPrice decimal.Decimal, quantity float64) FeeBreakdown
}

// FlatFeePolicy takes a percentage commission on the line total plus a fixed
// delivery fee. The configured defaults of zero keep the full amount with
// the farmer.
type FlatFeePolicy struct {
	commissionRate decimal.Decimal
	deliveryFee    decimal.Decimal
}

// NewFlatFeePolicy parses the configured rates.
func NewFlatFeePolicy(cfg config.FeesConfig) (*FlatFeePolicy, error) {
	rate, err := decimal.NewFromString(cfg.CommissionRate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing commission rate")
	}
	fee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing delivery fee")
	}
	return &FlatFeePolicy{commissionRate: rate, deliveryFee: fee}, nil
}

func (p *FlatFeePolicy) Assess(unitPrice decimal.Decimal, quantity float64) FeeBreakdown {
	total := unitPrice.Mul(decimal.NewFromFloat(quantity))
	commission := total.Mul(p.commissionRate).Div(decimal.NewFromInt(100)).Round(2)
	return FeeBreakdown{
		Total:       total,
		Commission:  commission,
		DeliveryFee: p.deliveryFee,
		NetToFarmer: total.Sub(commission).Sub(p.deliveryFee),
	}
}
