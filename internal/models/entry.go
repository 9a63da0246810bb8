package models

import (
	"fmt"
	"strings"

	"github.com/sterilpoint/protokol/internal/common"
)

// ServiceType is the delivery service option chosen for an entry. Shipping
// and the courier variants are mutually exclusive.
type ServiceType string

const (
	ServiceNone          ServiceType = "none"
	ServiceShipping      ServiceType = "shipping"
	ServiceCourierSingle ServiceType = "courierSingle"
	ServiceCourierDouble ServiceType = "courierDouble"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceNone, ServiceShipping, ServiceCourierSingle, ServiceCourierDouble:
		return true
	}
	return false
}

// Entry is one tool transfer/return cycle inside a monthly protocol.
type Entry struct {
	Date     string      `json:"date"`
	Tools    []Tool      `json:"tools"`
	Packages int         `json:"packages"`
	Service  ServiceType `json:"serviceType"`
	Comment  string      `json:"comment,omitempty"`

	// Return leg. Absent values fall back to the transfer side: an empty
	// ReturnTools list means "same as Tools", ReturnPackages <= 0 means
	// Packages, an empty ReturnDate means the next business day after Date.
	ReturnDate     string `json:"returnDate,omitempty"`
	ReturnTools    []Tool `json:"returnTools,omitempty"`
	ReturnPackages int    `json:"returnPackages,omitempty"`

	Signatures Signatures `json:"signatures"`
	Queue      QueueState `json:"queue"`
}

// EffectiveReturnTools returns ReturnTools, or Tools when no return list was
// recorded.
func (e *Entry) EffectiveReturnTools() []Tool {
	if len(e.ReturnTools) > 0 {
		return e.ReturnTools
	}
	return e.Tools
}

// EffectiveReturnPackages returns ReturnPackages, or Packages when it was
// never recorded.
func (e *Entry) EffectiveReturnPackages() int {
	if e.ReturnPackages > 0 {
		return e.ReturnPackages
	}
	return e.Packages
}

// ValidateForCreate checks the rules an entry must satisfy before it is
// persisted for the first time: at least one package, at least one tool with
// a positive count, a known service type and a bounded comment. Errors wrap
// common.ErrorValidation and name the offending field.
func (e *Entry) ValidateForCreate() error {
	if strings.TrimSpace(e.Date) == "" {
		return fmt.Errorf("%w: date is required", common.ErrorValidation)
	}
	if e.Packages < 1 {
		return fmt.Errorf("%w: packages must be at least 1", common.ErrorValidation)
	}
	if !HasPositiveTool(e.Tools) {
		return fmt.Errorf("%w: at least one tool with a positive count is required", common.ErrorValidation)
	}
	if e.Service != "" && !e.Service.Valid() {
		return fmt.Errorf("%w: unknown service type %q", common.ErrorValidation, e.Service)
	}
	if len(e.Comment) > common.CommentMaxLength {
		return fmt.Errorf("%w: comment exceeds %d characters", common.ErrorValidation, common.CommentMaxLength)
	}
	return nil
}

// Normalize coerces the entry into its persisted shape: blank tool rows are
// filtered, negative counts clamped and the service type defaulted.
func (e *Entry) Normalize() {
	e.Tools = NormalizeTools(e.Tools)
	e.ReturnTools = NormalizeTools(e.ReturnTools)
	if e.Packages < 0 {
		e.Packages = 0
	}
	if e.ReturnPackages < 0 {
		e.ReturnPackages = 0
	}
	if e.Service == "" {
		e.Service = ServiceNone
	}
}

// Clone returns a deep copy.
func (e *Entry) Clone() Entry {
	out := *e
	out.Tools = append([]Tool(nil), e.Tools...)
	out.ReturnTools = append([]Tool(nil), e.ReturnTools...)
	return out
}

// Duplicate produces a fresh draft carrying only the tool list, package
// count, service option and comment of e. Dates, signatures and queue state
// never travel with a duplicate.
func (e *Entry) Duplicate() Entry {
	return Entry{
		Tools:    append([]Tool(nil), e.Tools...),
		Packages: e.Packages,
		Service:  e.Service,
		Comment:  e.Comment,
	}
}
