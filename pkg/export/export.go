// Package export renders planning reports for operators.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/crewplan/core/planning"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var csvHeader = []string{"tenant_id", "need_id", "vessel_id", "rank", "status", "reason", "proposal_id", "score", "candidates", "fallbacks", "error"}

// WriteCSV writes one row per relief need of the reports.
func WriteCSV(w io.Writer, reports ...planning.CycleReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reports {
		for _, o := range r.Outcomes {
			score := ""
			if o.Score != nil {
				score = strconv.Itoa(*o.Score)
			}
			rec := []string{
				r.TenantID,
				o.NeedID,
				o.VesselID,
				o.Rank,
				string(o.Status),
				o.Reason,
				o.ProposalID,
				score,
				strconv.Itoa(o.Candidates),
				strconv.Itoa(o.Fallbacks),
				o.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write renders the reports in format, "json" or "csv". JSON output is v
// itself so a single tenant report keeps its shape.
func Write(w io.Writer, format string, v any, reports ...planning.CycleReport) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v)
	case "csv":
		return WriteCSV(w, reports...)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
