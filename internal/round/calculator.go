// Package round computes the figures of a single priced funding round:
// post-money valuation, the new investor's ownership, the share price and
// the number of shares issued. All functions are pure.
package round

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
)

// PricePlaces is the number of decimal places a share price is rounded to.
const PricePlaces int32 = 6

// Result holds every derived figure of one round.
type Result struct {
	PreMoney        decimal.Decimal
	Investment      decimal.Decimal
	PostMoney       decimal.Decimal
	InvestorBps     fixedpoint.Bps
	PreMoneyShares  int64
	SharePrice      decimal.Decimal
	NewSharesIssued int64
}

// PostMoney returns preMoney + investment.
func PostMoney(preMoney, investment decimal.Decimal) (decimal.Decimal, error) {
	if err := fixedpoint.RequireNonNegative("pre-money valuation", preMoney); err != nil {
		return decimal.Zero, err
	}
	if err := fixedpoint.RequireNonNegative("investment", investment); err != nil {
		return decimal.Zero, err
	}
	return preMoney.Add(investment), nil
}

// InvestorOwnershipBps returns round(investment * 10000 / postMoney). A zero
// post-money valuation gives 0 bps.
func InvestorOwnershipBps(investment, postMoney decimal.Decimal) (fixedpoint.Bps, error) {
	bps, err := fixedpoint.ToBps(investment, postMoney)
	if err != nil {
		return 0, err
	}
	if !bps.Valid() {
		return 0, fmt.Errorf("%w: investor ownership %d bps outside [0, %d] (investment %s, post-money %s)",
			fixedpoint.ErrInvalidState, bps, fixedpoint.Full, investment, postMoney)
	}
	return bps, nil
}

// SharePrice returns preMoney / preMoneyShares rounded to PricePlaces. Zero
// pre-money shares give a zero price. The rounded price is for display;
// Calculate issues shares from the exact ratio.
func SharePrice(preMoney decimal.Decimal, preMoneyShares int64) (decimal.Decimal, error) {
	if err := fixedpoint.RequireNonNegative("pre-money valuation", preMoney); err != nil {
		return decimal.Zero, err
	}
	if preMoneyShares < 0 {
		return decimal.Zero, fmt.Errorf("%w: pre-money shares must not be negative, got %d",
			fixedpoint.ErrInvalidArgument, preMoneyShares)
	}
	return fixedpoint.DivRound(preMoney, decimal.NewFromInt(preMoneyShares), PricePlaces), nil
}

// NewSharesIssued returns round(investment / sharePrice). A zero price
// issues no shares.
func NewSharesIssued(investment, sharePrice decimal.Decimal) (int64, error) {
	if err := fixedpoint.RequireNonNegative("investment", investment); err != nil {
		return 0, err
	}
	if err := fixedpoint.RequireNonNegative("share price", sharePrice); err != nil {
		return 0, err
	}
	return shareCount(fixedpoint.DivRound(investment, sharePrice, 0))
}

// IssuedAtValuation returns round(investment * preMoneyShares / preMoney),
// the share count that buys exactly investment / postMoney of the company.
// A zero pre-money valuation issues no shares.
func IssuedAtValuation(investment, preMoney decimal.Decimal, preMoneyShares int64) (int64, error) {
	if err := fixedpoint.RequireNonNegative("investment", investment); err != nil {
		return 0, err
	}
	if err := fixedpoint.RequireNonNegative("pre-money valuation", preMoney); err != nil {
		return 0, err
	}
	if preMoneyShares < 0 {
		return 0, fmt.Errorf("%w: pre-money shares must not be negative, got %d",
			fixedpoint.ErrInvalidArgument, preMoneyShares)
	}
	return shareCount(fixedpoint.DivRound(investment.Mul(decimal.NewFromInt(preMoneyShares)), preMoney, 0))
}

func shareCount(d decimal.Decimal) (int64, error) {
	if !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: share count %s does not fit in int64", fixedpoint.ErrInvalidArgument, d)
	}
	return d.IntPart(), nil
}

// Calculate runs every step for one round.
func Calculate(preMoney, investment decimal.Decimal, preMoneyShares int64) (Result, error) {
	post, err := PostMoney(preMoney, investment)
	if err != nil {
		return Result{}, err
	}
	bps, err := InvestorOwnershipBps(investment, post)
	if err != nil {
		return Result{}, err
	}
	price, err := SharePrice(preMoney, preMoneyShares)
	if err != nil {
		return Result{}, err
	}
	issued, err := IssuedAtValuation(investment, preMoney, preMoneyShares)
	if err != nil {
		return Result{}, err
	}
	if issued > math.MaxInt64-preMoneyShares {
		return Result{}, fmt.Errorf("%w: %d shares issued on top of %d overflow the share count",
			fixedpoint.ErrInvalidArgument, issued, preMoneyShares)
	}
	return Result{
		PreMoney:        preMoney,
		Investment:      investment,
		PostMoney:       post,
		InvestorBps:     bps,
		PreMoneyShares:  preMoneyShares,
		SharePrice:      price,
		NewSharesIssued: issued,
	}, nil
}
