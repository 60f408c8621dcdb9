// Package courses looks up courses together with their context.
package courses

import (
	"context"

	"github.com/dmitrijs2005/courseimage/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}
