package capabilities

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/courseimage/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Has(ctx context.Context, userID, contextID int64, capability string) (bool, error) {
	// context.path ends with the context's own id, so matching "/<grant>/"
	// against path||'/' covers the context and all of its ancestors.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM capability_grants g, context c
			WHERE c.id = $2 AND g.user_id = $1 AND g.capability = $3
			  AND (c.path || '/') LIKE '%/' || g.context_id || '/%'
		)
	`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, contextID, capability).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
