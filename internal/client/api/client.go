// Package api talks to the Protokol server over its HTTP surface. Server
// error statuses are mapped back onto the shared sentinel errors so callers
// can use errors.Is regardless of which side rejected the operation.
package api

import (
	"context"

	"github.com/sterilpoint/protokol/internal/models"
)

// SignPayload carries the signature images of one leg. Nil slots are left
// untouched server-side. UseDefaultStaff requests the server-held default
// staff image instead of a drawn one.
type SignPayload struct {
	Leg             models.Leg `json:"leg"`
	Client          []byte     `json:"client,omitempty"`
	Staff           []byte     `json:"staff,omitempty"`
	UseDefaultStaff bool       `json:"useDefaultStaff,omitempty"`
}

// ExportRecord is the metadata the server returns for a stored snapshot.
type ExportRecord struct {
	ID            string   `json:"id"`
	ClientID      string   `json:"clientId"`
	Month         string   `json:"month"`
	Name          string   `json:"name"`
	ObjectKey     string   `json:"objectKey"`
	TotalPackages int      `json:"totalPackages"`
	Fingerprints  []string `json:"fingerprints"`
}

// Client is the remote ledger collaborator. All mutating calls return the
// server's refreshed view so callers can replace local state wholesale.
type Client interface {
	Login(ctx context.Context, username, password string) error

	ListProtocols(ctx context.Context) ([]models.ProtocolSummary, error)
	GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error)
	CreateEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, *models.Protocol, error)
	PatchEntry(ctx context.Context, clientID, month string, index int, patch models.EntryPatch) (*models.Entry, *models.Protocol, error)
	DeleteEntry(ctx context.Context, clientID, month string, index int) (*models.Protocol, error)

	SetQueue(ctx context.Context, clientID, month string, index int, queueType models.QueueType, pending bool, plannedDate string) (*models.Entry, error)
	Sign(ctx context.Context, clientID, month string, index int, payload SignPayload) (*models.Entry, error)
	DeleteSignature(ctx context.Context, clientID, month string, index int, leg models.Leg, who models.Party) (*models.Entry, error)
	SignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error)

	ListClients(ctx context.Context) ([]models.Client, error)
	ListToolNames(ctx context.Context) ([]string, error)

	CreateExport(ctx context.Context, snap *models.ExportSnapshot) (*ExportRecord, error)
	ListExports(ctx context.Context, month string) ([]ExportRecord, error)
	ExportURL(ctx context.Context, id string) (string, error)
}
