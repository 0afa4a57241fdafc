// Package captable folds a sequence of funding rounds over an initial
// ownership distribution and returns the resulting snapshot history.
//
// Each round dilutes every existing holder by (10000 - newBps) / 10000,
// rounding each holder independently half away from zero. Whatever that
// rounding leaves over (the residual) is corrected on the diluted holders by
// the largest remainder rule:
//
//   - a positive residual adds 1 bps to each holder that was rounded down,
//     largest discarded remainder first;
//   - a negative residual removes 1 bps from each holder that was rounded up,
//     largest added amount first;
//   - ties go to the larger prior holding, then to the earlier stakeholder.
//
// New investors keep exactly the bps the round gives them. Because every
// corrected value stays between the floor and the ceiling of its exact
// diluted value, no holder's bps ever increases from one snapshot to the next
// and every snapshot sums to exactly 10000.
//
// Round N's pre-money valuation is taken as given; it is not checked against
// round N-1's post-money.
package captable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/round"
)

// DefaultFounderName labels the stakeholder used when no initial
// distribution is given.
const DefaultFounderName = "Founders"

// stakeholderNamespace seeds the name-based ids of generated stakeholders so
// that repeated runs over the same input produce identical output.
var stakeholderNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sheikh-saqib/captable-simulator/stakeholder"))

// Kind separates caller mistakes from defects.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindInvalidState    Kind = "invalid_state"
)

// Error reports the round a simulation stopped at. Round 0 is the initial
// distribution. It unwraps to fixedpoint.ErrInvalidArgument or
// fixedpoint.ErrInvalidState.
type Error struct {
	Kind  Kind
	Round int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("round %d: %v", e.Round, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(roundIndex int, err error) *Error {
	kind := KindInvalidArgument
	if errors.Is(err, fixedpoint.ErrInvalidState) {
		kind = KindInvalidState
	}
	return &Error{Kind: kind, Round: roundIndex, Err: err}
}

// Simulate applies rounds in order to the initial distribution. An empty
// initial distribution means 100% to a single Founders stakeholder.
//
// On error the returned History still holds every snapshot computed before
// the failing round, and the error is an *Error naming that round.
func Simulate(initial []models.Holder, rounds []models.FundingRound) (models.History, error) {
	var history models.History

	stakeholders, first, err := initialSnapshot(initial)
	if err != nil {
		return history, newError(0, err)
	}
	history.Stakeholders = stakeholders
	history.Snapshots = []models.Snapshot{first}
	history.Rounds = make([]models.RoundResult, 0, len(rounds))

	investors := 0
	for _, s := range stakeholders {
		if s.Category == models.CategoryInvestor {
			investors++
		}
	}

	prev := first
	for i, r := range rounds {
		idx := i + 1
		step, err := applyRound(idx, r, prev, investors)
		if err != nil {
			return history, newError(idx, err)
		}
		if i > 0 {
			step.result.DownRound = r.PreMoney.LessThan(history.Rounds[i-1].PostMoney)
		}

		history.Stakeholders = append(history.Stakeholders, step.added...)
		history.Snapshots = append(history.Snapshots, step.snapshot)
		history.Rounds = append(history.Rounds, step.result)
		investors += len(step.added)
		prev = step.snapshot
	}
	return history, nil
}

type roundStep struct {
	snapshot models.Snapshot
	result   models.RoundResult
	added    []models.Stakeholder
}

func applyRound(idx int, r models.FundingRound, prev models.Snapshot, investorsSoFar int) (roundStep, error) {
	tranches, investment, err := resolveTranches(r)
	if err != nil {
		return roundStep{}, err
	}

	calc, err := round.Calculate(r.PreMoney, investment, prev.TotalShares())
	if err != nil {
		return roundStep{}, err
	}

	holdings, residual, err := dilute(prev.Holdings, calc.InvestorBps)
	if err != nil {
		return roundStep{}, err
	}

	weights := make([]decimal.Decimal, len(tranches))
	for i, t := range tranches {
		weights[i] = t.Amount
	}
	bpsParts, err := fixedpoint.SplitBps(calc.InvestorBps, weights)
	if err != nil {
		return roundStep{}, err
	}
	shareParts, err := fixedpoint.Split(calc.NewSharesIssued, weights)
	if err != nil {
		return roundStep{}, err
	}

	added := make([]models.Stakeholder, len(tranches))
	ids := make([]string, len(tranches))
	for i, t := range tranches {
		name := t.Label
		if name == "" {
			name = investorName(investorsSoFar + i)
		}
		added[i] = models.Stakeholder{
			ID:           stakeholderID(idx, i),
			Name:         name,
			Category:     models.CategoryInvestor,
			IntroducedAt: idx,
		}
		ids[i] = added[i].ID
		holdings = append(holdings, models.Holding{
			StakeholderID: added[i].ID,
			Bps:           bpsParts[i],
			Shares:        shareParts[i],
		})
	}

	snap := models.Snapshot{Round: idx, Holdings: holdings}
	if err := checkSnapshot(snap); err != nil {
		return roundStep{}, err
	}

	return roundStep{
		snapshot: snap,
		added:    added,
		result: models.RoundResult{
			Index:           idx,
			PreMoney:        calc.PreMoney,
			Investment:      calc.Investment,
			PostMoney:       calc.PostMoney,
			PreMoneyShares:  calc.PreMoneyShares,
			SharePrice:      calc.SharePrice,
			NewSharesIssued: calc.NewSharesIssued,
			InvestorBps:     calc.InvestorBps,
			InvestorIDs:     ids,
			Residual:        residual,
		},
	}, nil
}

func resolveTranches(r models.FundingRound) ([]models.Tranche, decimal.Decimal, error) {
	if len(r.Investors) == 0 {
		return []models.Tranche{{Label: r.InvestorLabel, Amount: r.Investment}}, r.Investment, nil
	}
	sum := decimal.Zero
	for i, t := range r.Investors {
		if err := fixedpoint.RequireNonNegative(fmt.Sprintf("investors[%d].amount", i), t.Amount); err != nil {
			return nil, decimal.Zero, err
		}
		sum = sum.Add(t.Amount)
	}
	if !r.Investment.IsZero() && !r.Investment.Equal(sum) {
		return nil, decimal.Zero, fmt.Errorf("%w: investment %s does not match investor total %s",
			fixedpoint.ErrInvalidArgument, r.Investment, sum)
	}
	return r.Investors, sum, nil
}

// dilute scales every holding by (Full - newBps) / Full and applies the
// residual correction. It returns fresh holdings and the residual found
// before correction.
func dilute(prev []models.Holding, newBps fixedpoint.Bps) ([]models.Holding, int64, error) {
	keep := int64(fixedpoint.Full - newBps)
	out := make([]models.Holding, len(prev))
	diffs := make([]int64, len(prev))

	sum := newBps
	for i, h := range prev {
		scaled, diff := fixedpoint.Scale(h.Bps, keep, int64(fixedpoint.Full))
		out[i] = models.Holding{StakeholderID: h.StakeholderID, Bps: scaled, Shares: h.Shares}
		diffs[i] = diff
		sum += scaled
	}
	residual := int64(fixedpoint.Full - sum)
	if residual == 0 {
		return out, 0, nil
	}

	var candidates []int
	for i, diff := range diffs {
		if (residual > 0 && diff < 0) || (residual < 0 && diff > 0) {
			candidates = append(candidates, i)
		}
	}
	if int64(len(candidates)) < absInt(residual) {
		return nil, residual, fmt.Errorf("%w: residual %d bps exceeds %d correctable holders",
			fixedpoint.ErrInvalidState, residual, len(candidates))
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		ia, ib := candidates[a], candidates[b]
		da, db := absInt(diffs[ia]), absInt(diffs[ib])
		if da != db {
			return da > db
		}
		if prev[ia].Bps != prev[ib].Bps {
			return prev[ia].Bps > prev[ib].Bps
		}
		return ia < ib
	})

	step := fixedpoint.Bps(1)
	if residual < 0 {
		step = -1
	}
	for _, i := range candidates[:absInt(residual)] {
		out[i].Bps += step
	}
	return out, residual, nil
}

func initialSnapshot(initial []models.Holder) ([]models.Stakeholder, models.Snapshot, error) {
	if len(initial) == 0 {
		initial = []models.Holder{{Name: DefaultFounderName, Category: models.CategoryFounder, Bps: fixedpoint.Full}}
	}

	stakeholders := make([]models.Stakeholder, len(initial))
	holdings := make([]models.Holding, len(initial))
	seen := make(map[string]bool, len(initial))

	var bpsTotal fixedpoint.Bps
	shareWeights := make([]decimal.Decimal, len(initial))
	var sharesTotal int64
	for i, h := range initial {
		if h.Bps < 0 || h.Bps > fixedpoint.Full {
			return nil, models.Snapshot{}, fmt.Errorf("%w: holder %d bps %d outside [0, %d]",
				fixedpoint.ErrInvalidArgument, i, h.Bps, fixedpoint.Full)
		}
		if h.Shares < 0 {
			return nil, models.Snapshot{}, fmt.Errorf("%w: holder %d shares must not be negative, got %d",
				fixedpoint.ErrInvalidArgument, i, h.Shares)
		}
		category := h.Category
		if category == "" {
			category = models.CategoryFounder
		}
		if !category.Valid() {
			return nil, models.Snapshot{}, fmt.Errorf("%w: holder %d has unknown category %q",
				fixedpoint.ErrInvalidArgument, i, h.Category)
		}
		id := h.ID
		if id == "" {
			id = stakeholderID(0, i)
		}
		if seen[id] {
			return nil, models.Snapshot{}, fmt.Errorf("%w: duplicate stakeholder id %q", fixedpoint.ErrInvalidArgument, id)
		}
		seen[id] = true
		name := h.Name
		if name == "" {
			name = fmt.Sprintf("Stakeholder %d", i+1)
		}

		stakeholders[i] = models.Stakeholder{ID: id, Name: name, Category: category}
		holdings[i] = models.Holding{StakeholderID: id, Bps: h.Bps, Shares: h.Shares}
		bpsTotal += h.Bps
		sharesTotal += h.Shares
		shareWeights[i] = decimal.NewFromInt(h.Shares)
	}

	if bpsTotal == 0 && sharesTotal > 0 {
		parts, err := fixedpoint.SplitBps(fixedpoint.Full, shareWeights)
		if err != nil {
			return nil, models.Snapshot{}, err
		}
		for i := range holdings {
			holdings[i].Bps = parts[i]
		}
		bpsTotal = fixedpoint.Full
	}
	if bpsTotal != fixedpoint.Full {
		return nil, models.Snapshot{}, fmt.Errorf("%w: initial distribution sums to %d bps, want %d",
			fixedpoint.ErrInvalidArgument, bpsTotal, fixedpoint.Full)
	}
	return stakeholders, models.Snapshot{Round: 0, Holdings: holdings}, nil
}

func checkSnapshot(s models.Snapshot) error {
	for _, h := range s.Holdings {
		if !h.Bps.Valid() {
			return fmt.Errorf("%w: stakeholder %s has %d bps", fixedpoint.ErrInvalidState, h.StakeholderID, h.Bps)
		}
	}
	if total := s.TotalBps(); total != fixedpoint.Full {
		return fmt.Errorf("%w: snapshot %d sums to %d bps", fixedpoint.ErrInvalidState, s.Round, total)
	}
	return nil
}

func stakeholderID(roundIndex, position int) string {
	return uuid.NewSHA1(stakeholderNamespace, []byte(fmt.Sprintf("%d/%d", roundIndex, position))).String()
}

// investorName labels the n-th investor (0-based): Investor A, B, ... Z,
// then Investor 27, 28, ...
func investorName(n int) string {
	if n < 26 {
		return "Investor " + string(rune('A'+n))
	}
	return fmt.Sprintf("Investor %d", n+1)
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
