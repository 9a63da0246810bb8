package models

// Client is a read-only row of the client directory. The ID is a stable slug
// used in protocol addresses.
type Client struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	TaxIdentifier string `json:"taxIdentifier,omitempty"`
}
