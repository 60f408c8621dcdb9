// Package capabilities answers "does this user hold capability X in context
// Y". A grant on any ancestor of Y counts.
package capabilities

import "context"

type Repository interface {
	Has(ctx context.Context, userID, contextID int64, capability string) (bool, error)
}
