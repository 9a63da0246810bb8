package models

import "time"

// ReportRow is one aligned row of the transfer/return report produced by the
// reconciler. The trailing packages row carries Summary=true and is rendered
// distinctly from tool rows.
type ReportRow struct {
	Name        string `json:"name"`
	TransferQty int    `json:"tQty"`
	ReturnQty   int    `json:"rQty"`
	Summary     bool   `json:"summary,omitempty"`
}

// ExportEntry is one finalized entry inside an export snapshot: its dates
// plus the reconciled rows captured at finalization time.
type ExportEntry struct {
	Date        string      `json:"date"`
	ReturnDate  string      `json:"returnDate,omitempty"`
	Service     ServiceType `json:"serviceType"`
	Comment     string      `json:"comment,omitempty"`
	Rows        []ReportRow `json:"rows"`
	Fingerprint string      `json:"fingerprint"`
}

// ExportSnapshot is the finalized protocol document emitted by the
// finalization controller and stored by the server. Rendering the document
// into its final presentation format is outside this system.
type ExportSnapshot struct {
	ID        string        `json:"id,omitempty"`
	ClientID  string        `json:"clientId"`
	Month     string        `json:"month"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Entries   []ExportEntry `json:"entries"`
	Totals    Totals        `json:"totals"`
}

// Fingerprints lists the content fingerprints of every entry in the
// snapshot.
func (s *ExportSnapshot) Fingerprints() []string {
	out := make([]string, 0, len(s.Entries))
	for i := range s.Entries {
		out = append(out, s.Entries[i].Fingerprint)
	}
	return out
}
