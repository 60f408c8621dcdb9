// Package files persists stored-file rows. Each row is unique by its
// pathnamehash; the bytes live in the blob store.
package files

import (
	"context"

	"github.com/dmitrijs2005/courseimage/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	Get(ctx context.Context, tuple models.FileTuple) (*models.File, error)
	Exists(ctx context.Context, tuple models.FileTuple) (bool, error)
	ItemInUse(ctx context.Context, contextID int64, component, fileArea string, itemID int64) (bool, error)
	DeleteArea(ctx context.Context, filter models.AreaFilter) (int64, error)
}
