// Package reconcile aligns an entry's transfer and return tool lists into the
// unified row set used by on-screen tables and export documents. Both views
// consume the same output, so the report and the ledger can never diverge in
// row count or ordering.
package reconcile

import (
	"strings"

	"github.com/sterilpoint/protokol/internal/models"
)

// SummaryRowName labels the synthetic trailing packages row.
const SummaryRowName = "Pakiety"

// Align builds the report rows for one entry. Transfer rows keep their
// order; return quantities are matched by case-insensitive trimmed name
// first, then by position, then default to zero. An empty return list means
// nothing was retyped and every transfer quantity is mirrored. The final row
// summarizes package counts, with the return count falling back to the
// transfer count when absent.
func Align(transfer, ret []models.Tool, transferPackages, returnPackages int) []models.ReportRow {
	t := models.NormalizeTools(transfer)
	r := models.NormalizeTools(ret)

	rows := make([]models.ReportRow, 0, len(t)+1)

	if len(r) == 0 {
		for _, tool := range t {
			rows = append(rows, models.ReportRow{
				Name:        tool.Name,
				TransferQty: tool.Count,
				ReturnQty:   tool.Count,
			})
		}
	} else {
		byName := make(map[string]int, len(r))
		for _, tool := range r {
			key := foldName(tool.Name)
			if _, ok := byName[key]; !ok {
				byName[key] = tool.Count
			}
		}
		for i, tool := range t {
			rQty := 0
			if count, ok := byName[foldName(tool.Name)]; ok {
				rQty = count
			} else if i < len(r) {
				rQty = r[i].Count
			}
			rows = append(rows, models.ReportRow{
				Name:        tool.Name,
				TransferQty: tool.Count,
				ReturnQty:   rQty,
			})
		}
	}

	rPkgs := returnPackages
	if rPkgs <= 0 {
		rPkgs = transferPackages
	}
	rows = append(rows, models.ReportRow{
		Name:        SummaryRowName,
		TransferQty: transferPackages,
		ReturnQty:   rPkgs,
		Summary:     true,
	})
	return rows
}

// AlignEntry is Align over an entry's own lists and package counts, with the
// return-side fallbacks applied. Note the raw ReturnTools list is used, not
// EffectiveReturnTools: an empty return list must take the mirror path, not
// the diff path.
func AlignEntry(e *models.Entry) []models.ReportRow {
	return Align(e.Tools, e.ReturnTools, e.Packages, e.ReturnPackages)
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
