package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNonPositiveAmount is returned by SplitAmount for zero or negative input.
var ErrNonPositiveAmount = errors.New("amount must be a positive value")

// CommissionSplit is the breakdown of a gross charge into the platform's
// commission and the amount credited to the merchant.
type CommissionSplit struct {
	Amount        decimal.Decimal
	Commission    decimal.Decimal
	NetToMerchant decimal.Decimal
}

// SplitAmount computes the commission split for a gross amount at the given
// rate. The commission is rounded half-up to 2 decimal places first and the
// net derived by subtraction from the rounded amount, so that
// Amount = Commission + NetToMerchant holds exactly.
func SplitAmount(amount, rate decimal.Decimal) (CommissionSplit, error) {
	if amount.Sign() <= 0 {
		return CommissionSplit{}, ErrNonPositiveAmount
	}

	gross := amount.Round(2)
	if gross.Sign() <= 0 {
		// Sub-cent amounts round to zero and carry no value.
		return CommissionSplit{}, ErrNonPositiveAmount
	}

	commission := gross.Mul(rate).Round(2)
	return CommissionSplit{
		Amount:        gross,
		Commission:    commission,
		NetToMerchant: gross.Sub(commission),
	}, nil
}
