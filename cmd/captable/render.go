package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sheikh-saqib/captable-simulator/internal/format"
)

// renderTable prints the initial cap table, then one block per round.
func renderTable(out io.Writer, rep format.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, snap := range rep.Snapshots {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if snap.Round == 0 {
			fmt.Fprintln(w, "Initial cap table")
		} else if snap.Round-1 < len(rep.Rounds) {
			r := rep.Rounds[snap.Round-1]
			down := ""
			if r.DownRound {
				down = " (down round)"
			}
			fmt.Fprintf(w, "Round %d%s\n", r.Index, down)
			fmt.Fprintf(w, "  Pre-money\t%s\n", r.PreMoney)
			fmt.Fprintf(w, "  Investment\t%s\n", r.Investment)
			fmt.Fprintf(w, "  Post-money\t%s\n", r.PostMoney)
			fmt.Fprintf(w, "  Share price\t%s\n", r.SharePrice)
			fmt.Fprintf(w, "  New shares\t%s\n", r.NewSharesIssued)
			fmt.Fprintf(w, "  Investor ownership\t%s\n", r.InvestorOwnership)
		}
		fmt.Fprintln(w, "  STAKEHOLDER\tCATEGORY\tOWNERSHIP\tSHARES")
		for _, h := range snap.Holdings {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", h.Name, h.Category, h.Ownership, h.Shares)
		}
	}
	return w.Flush()
}
