package services

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/repomanager"
)

// Guard decides whether a caller may act in a context.
type Guard struct {
	repomanager repomanager.RepositoryManager
}

func NewGuard(m repomanager.RepositoryManager) *Guard {
	return &Guard{repomanager: m}
}

// ValidateContext checks that the caller is an active user who may act in c.
func (g *Guard) ValidateContext(ctx context.Context, db dbx.DBTX, caller Caller, c *models.Context) error {
	user, err := g.repomanager.Users(db).GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrRequireLogin
		}
		return err
	}
	if user.Deleted || user.Suspended {
		return common.ErrRequireLogin
	}
	if c == nil {
		return common.ErrContextNotFound
	}
	return nil
}

// RequireCapability fails with nopermissions unless the caller holds
// capability in contextID or one of its ancestors.
func (g *Guard) RequireCapability(ctx context.Context, db dbx.DBTX, caller Caller, contextID int64, capability string) error {
	ok, err := g.repomanager.Capabilities(db).Has(ctx, caller.UserID, contextID, capability)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNoPermissions.WithMessage("sorry, but you do not currently have permissions to do that (%s)", capability)
	}
	return nil
}
