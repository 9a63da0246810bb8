// Package tools provides access to the tool dictionary used for name
// canonicalization on the client side.
package tools

import "context"

type Repository interface {
	// ListNames returns all canonical tool names ordered alphabetically.
	ListNames(ctx context.Context) ([]string, error)
}
