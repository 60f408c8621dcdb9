// Package contexts reads the context tree.
package contexts

import (
	"context"

	"github.com/dmitrijs2005/courseimage/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.Context, error)
	GetByInstance(ctx context.Context, level models.ContextLevel, instanceID int64) (*models.Context, error)
}
