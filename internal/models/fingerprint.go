package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives a stable content hash of the entry's identity fields:
// date, tools (sorted by name then count), packages, service type and
// comment. Signatures, queue flags and the return leg stay out of the hash,
// so attaching them does not change an entry's finalization identity.
func (e *Entry) Fingerprint() string {
	tools := append([]Tool(nil), e.Tools...)
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Name != tools[j].Name {
			return tools[i].Name < tools[j].Name
		}
		return tools[i].Count < tools[j].Count
	})

	var b strings.Builder
	b.WriteString(e.Date)
	b.WriteByte(0x1e)
	for _, t := range tools {
		fmt.Fprintf(&b, "%s\x1f%d\x1e", t.Name, t.Count)
	}
	fmt.Fprintf(&b, "%d\x1e%s\x1e%s", e.Packages, e.Service, e.Comment)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
