package models

import (
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
)

// FundingRound is one priced round as entered by the user. PreMoney is an
// independent input and need not match the previous round's post-money.
type FundingRound struct {
	PreMoney   decimal.Decimal `json:"pre_money"`
	Investment decimal.Decimal `json:"investment"`
	// InvestorLabel names the single new investor; a default is generated
	// when empty. Ignored when Investors is set.
	InvestorLabel string `json:"investor_label,omitempty"`
	// Investors splits the round across several new investors. When set,
	// Investment may be zero (it is then the sum of the tranches) or must
	// equal that sum.
	Investors []Tranche `json:"investors,omitempty"`
}

// Tranche is one new investor's part of a round.
type Tranche struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// RoundResult carries the figures derived for a round, for display.
type RoundResult struct {
	Index           int             `json:"index"`
	PreMoney        decimal.Decimal `json:"pre_money"`
	Investment      decimal.Decimal `json:"investment"`
	PostMoney       decimal.Decimal `json:"post_money"`
	PreMoneyShares  int64           `json:"pre_money_shares"`
	SharePrice      decimal.Decimal `json:"share_price"`
	NewSharesIssued int64           `json:"new_shares_issued"`
	InvestorBps     fixedpoint.Bps  `json:"investor_bps"`
	InvestorIDs     []string        `json:"investor_ids"`
	// Residual is 10000 minus the sum of independently rounded bps, before
	// correction.
	Residual int64 `json:"residual"`
	// DownRound is set when PreMoney is below the previous round's
	// post-money. It is informational only.
	DownRound bool `json:"down_round"`
}
