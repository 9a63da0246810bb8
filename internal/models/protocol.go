package models

// Totals holds the derived aggregates of a protocol.
type Totals struct {
	TotalPackages int `json:"totalPackages"`
}

// Protocol is the monthly ledger of one client: an ordered list of entries
// addressed by insertion position. Display sorting by date is the client's
// concern and never reorders the persisted list.
type Protocol struct {
	ClientID string  `json:"clientId"`
	Month    string  `json:"month"`
	Entries  []Entry `json:"entries"`
	Totals   Totals  `json:"totals"`
}

// RecalcTotals recomputes the derived totals from the entry list.
func (p *Protocol) RecalcTotals() {
	sum := 0
	for i := range p.Entries {
		sum += p.Entries[i].Packages
	}
	p.Totals.TotalPackages = sum
}

// ProtocolSummary is one row of the documents listing.
type ProtocolSummary struct {
	ClientID      string `json:"clientId"`
	Month         string `json:"month"`
	EntryCount    int    `json:"entryCount"`
	TotalPackages int    `json:"totalPackages"`
}

// SignQueueItem is one row of the pending-signature view: an entry joined
// with its ledger coordinates.
type SignQueueItem struct {
	ClientID    string    `json:"clientId"`
	ClientName  string    `json:"clientName"`
	Month       string    `json:"month"`
	Index       int       `json:"index"`
	Type        QueueType `json:"type"`
	PlannedDate string    `json:"plannedDate,omitempty"`
	Entry       Entry     `json:"entry"`
}
