package models

// Leg identifies the outbound (transfer) or inbound (return) half of an
// entry.
type Leg string

const (
	LegTransfer Leg = "transfer"
	LegReturn   Leg = "return"
)

func (l Leg) Valid() bool {
	return l == LegTransfer || l == LegReturn
}

// Party identifies who signed a leg.
type Party string

const (
	PartyClient Party = "client"
	PartyStaff  Party = "staff"
)

func (p Party) Valid() bool {
	return p == PartyClient || p == PartyStaff
}

// LegSignatures holds the object-store keys of the signature images captured
// for one leg. An empty string means the slot has not been signed.
type LegSignatures struct {
	Client string `json:"client,omitempty"`
	Staff  string `json:"staff,omitempty"`
}

func (l LegSignatures) Get(p Party) string {
	if p == PartyStaff {
		return l.Staff
	}
	return l.Client
}

func (l *LegSignatures) Set(p Party, key string) {
	if p == PartyStaff {
		l.Staff = key
		return
	}
	l.Client = key
}

// Signatures tracks the four independent signature slots of an entry.
type Signatures struct {
	Transfer LegSignatures `json:"transfer"`
	Return   LegSignatures `json:"return"`
}

func (s *Signatures) Leg(l Leg) *LegSignatures {
	if l == LegReturn {
		return &s.Return
	}
	return &s.Transfer
}

// HasStaff reports whether a staff signature exists on either leg. Client
// signatures alone never satisfy this.
func (s Signatures) HasStaff() bool {
	return s.Transfer.Staff != "" || s.Return.Staff != ""
}

// Complete reports whether all four slots are filled.
func (s Signatures) Complete() bool {
	return s.Transfer.Client != "" && s.Transfer.Staff != "" &&
		s.Return.Client != "" && s.Return.Staff != ""
}
