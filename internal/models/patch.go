package models

// EntryPatch is a partial update of an entry. Nil fields are left untouched,
// so the same shape serves both general edits and return-leg completion.
type EntryPatch struct {
	Date           *string      `json:"date,omitempty"`
	Tools          *[]Tool      `json:"tools,omitempty"`
	Packages       *int         `json:"packages,omitempty"`
	Service        *ServiceType `json:"serviceType,omitempty"`
	Comment        *string      `json:"comment,omitempty"`
	ReturnDate     *string      `json:"returnDate,omitempty"`
	ReturnTools    *[]Tool      `json:"returnTools,omitempty"`
	ReturnPackages *int         `json:"returnPackages,omitempty"`
}

// Apply merges the patch into e and normalizes the result. Signatures and
// queue state are never patched through this path; they have their own
// operations.
func (p EntryPatch) Apply(e *Entry) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Tools != nil {
		e.Tools = append([]Tool(nil), (*p.Tools)...)
	}
	if p.Packages != nil {
		e.Packages = *p.Packages
	}
	if p.Service != nil {
		e.Service = *p.Service
	}
	if p.Comment != nil {
		e.Comment = *p.Comment
	}
	if p.ReturnDate != nil {
		e.ReturnDate = *p.ReturnDate
	}
	if p.ReturnTools != nil {
		e.ReturnTools = append([]Tool(nil), (*p.ReturnTools)...)
	}
	if p.ReturnPackages != nil {
		e.ReturnPackages = *p.ReturnPackages
	}
	e.Normalize()
}

// Empty reports whether the patch carries no changes.
func (p EntryPatch) Empty() bool {
	return p.Date == nil && p.Tools == nil && p.Packages == nil &&
		p.Service == nil && p.Comment == nil && p.ReturnDate == nil &&
		p.ReturnTools == nil && p.ReturnPackages == nil
}
