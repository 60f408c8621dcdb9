package users

import (
	"context"

	"github.com/dmitrijs2005/courseimage/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
