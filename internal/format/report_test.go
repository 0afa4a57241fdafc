package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/captable-simulator/internal/models"
)

func TestReport(t *testing.T) {
	h := models.History{
		Stakeholders: []models.Stakeholder{
			{ID: "f", Name: "Founders", Category: models.CategoryFounder},
			{ID: "a", Name: "Investor A", Category: models.CategoryInvestor, IntroducedAt: 1},
		},
		Snapshots: []models.Snapshot{
			{Round: 0, Holdings: []models.Holding{{StakeholderID: "f", Bps: 10000, Shares: 8_000_000}}},
			{Round: 1, Holdings: []models.Holding{
				{StakeholderID: "f", Bps: 8000, Shares: 8_000_000},
				{StakeholderID: "a", Bps: 2000, Shares: 2_000_000},
			}},
		},
		Rounds: []models.RoundResult{{
			Index:           1,
			PreMoney:        decimal.NewFromInt(4_000_000),
			Investment:      decimal.NewFromInt(1_000_000),
			PostMoney:       decimal.NewFromInt(5_000_000),
			SharePrice:      decimal.RequireFromString("0.5"),
			NewSharesIssued: 2_000_000,
			InvestorBps:     2000,
			InvestorIDs:     []string{"a"},
		}},
	}

	f, err := New("en-US", "USD")
	require.NoError(t, err)
	rep := f.Report(h)

	assert.Equal(t, "en-US", rep.Locale)
	assert.Equal(t, "USD", rep.Currency)
	require.Len(t, rep.Rounds, 1)
	r := rep.Rounds[0]
	assert.Equal(t, 1, r.Index)
	assert.Contains(t, r.PostMoney, "5,000,000.00")
	assert.Contains(t, r.SharePrice, "0.50")
	assert.Equal(t, "2,000,000", r.NewSharesIssued)
	assert.Equal(t, "20.00%", r.InvestorOwnership)
	assert.False(t, r.DownRound)

	require.Len(t, rep.Snapshots, 2)
	last := rep.Snapshots[1]
	require.Len(t, last.Holdings, 2)
	assert.Equal(t, HoldingView{StakeholderID: "f", Name: "Founders", Category: "FOUNDER", Ownership: "80.00%", Shares: "8,000,000"}, last.Holdings[0])
	assert.Equal(t, "Investor A", last.Holdings[1].Name)
}

func TestReportEmptyHistory(t *testing.T) {
	f, err := New("", "")
	require.NoError(t, err)
	rep := f.Report(models.History{})
	assert.Empty(t, rep.Rounds)
	assert.Empty(t, rep.Snapshots)
}
