// Package logging defines the logger the server hands to its services and
// transport. NewJSON builds the slog-backed implementation used in
// production; tests swap in one writing to io.Discard.
package logging

import "context"

// Logger is the structured logger used across the server. Arguments after
// the message alternate keys and values:
//
//	log.Info(ctx, "entry created", "client", clientID, "index", position)
type Logger interface {
	// Info records routine lifecycle events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger whose records always carry the given pairs.
	With(args ...any) Logger
}
