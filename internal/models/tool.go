// Package models holds the domain types shared by the server and the client:
// protocol ledgers, entries, tool lists, signatures, queue state and export
// snapshots. The JSON tags define the wire format of the HTTP API.
package models

import "strings"

// Tool is one row of a transfer or return tool list. Names are free text
// entered by staff; canonicalization against the tool dictionary happens on
// the client side.
type Tool struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NormalizeTools drops rows with a blank name and clamps negative counts to
// zero. The input slice is not modified.
func NormalizeTools(tools []Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		count := t.Count
		if count < 0 {
			count = 0
		}
		out = append(out, Tool{Name: name, Count: count})
	}
	return out
}

// HasPositiveTool reports whether at least one row has a non-blank name and a
// count greater than zero.
func HasPositiveTool(tools []Tool) bool {
	for _, t := range tools {
		if strings.TrimSpace(t.Name) != "" && t.Count > 0 {
			return true
		}
	}
	return false
}
