package format

import "github.com/sheikh-saqib/captable-simulator/internal/models"

// Report is a History rendered for display. Raw figures stay in the History;
// every field here is a display string.
type Report struct {
	Locale    string         `json:"locale"`
	Currency  string         `json:"currency"`
	Rounds    []RoundView    `json:"rounds"`
	Snapshots []SnapshotView `json:"snapshots"`
}

type RoundView struct {
	Index             int    `json:"index"`
	PreMoney          string `json:"pre_money"`
	Investment        string `json:"investment"`
	PostMoney         string `json:"post_money"`
	SharePrice        string `json:"share_price"`
	NewSharesIssued   string `json:"new_shares_issued"`
	InvestorOwnership string `json:"investor_ownership"`
	DownRound         bool   `json:"down_round,omitempty"`
}

type SnapshotView struct {
	Round    int           `json:"round"`
	Holdings []HoldingView `json:"holdings"`
}

type HoldingView struct {
	StakeholderID string `json:"stakeholder_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Ownership     string `json:"ownership"`
	Shares        string `json:"shares"`
}

// Report renders h.
func (f *Formatter) Report(h models.History) Report {
	rep := Report{
		Locale:    f.Locale(),
		Currency:  f.CurrencyCode(),
		Rounds:    make([]RoundView, 0, len(h.Rounds)),
		Snapshots: make([]SnapshotView, 0, len(h.Snapshots)),
	}
	for _, r := range h.Rounds {
		rep.Rounds = append(rep.Rounds, RoundView{
			Index:             r.Index,
			PreMoney:          f.Currency(r.PreMoney),
			Investment:        f.Currency(r.Investment),
			PostMoney:         f.Currency(r.PostMoney),
			SharePrice:        f.Price(r.SharePrice),
			NewSharesIssued:   f.Shares(r.NewSharesIssued),
			InvestorOwnership: f.Percentage(r.InvestorBps),
			DownRound:         r.DownRound,
		})
	}

	names := make(map[string]models.Stakeholder, len(h.Stakeholders))
	for _, s := range h.Stakeholders {
		names[s.ID] = s
	}
	for _, snap := range h.Snapshots {
		view := SnapshotView{Round: snap.Round, Holdings: make([]HoldingView, 0, len(snap.Holdings))}
		for _, hold := range snap.Holdings {
			s := names[hold.StakeholderID]
			view.Holdings = append(view.Holdings, HoldingView{
				StakeholderID: hold.StakeholderID,
				Name:          s.Name,
				Category:      string(s.Category),
				Ownership:     f.Percentage(hold.Bps),
				Shares:        f.Shares(hold.Shares),
			})
		}
		rep.Snapshots = append(rep.Snapshots, view)
	}
	return rep
}
