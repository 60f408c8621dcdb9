package contexts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Context, error) {
	query :=
		`SELECT id, contextlevel, instanceid, path, depth FROM context
		 WHERE id = $1
		 `
	return r.get(ctx, query, id)
}

func (r *PostgresRepository) GetByInstance(ctx context.Context, level models.ContextLevel, instanceID int64) (*models.Context, error) {
	query :=
		`SELECT id, contextlevel, instanceid, path, depth FROM context
		 WHERE contextlevel = $1 AND instanceid = $2
		 `
	return r.get(ctx, query, int(level), instanceID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (*models.Context, error) {
	var (
		c     models.Context
		level int
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &level, &c.InstanceID, &c.Path, &c.Depth)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.ContextLevel = models.ContextLevel(level)
	return &c, nil
}
