package courses

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

// GetByID returns the course and its context id. A course without a
// course-level context row is reported as common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query :=
		`SELECT c.id, c.fullname, c.shortname, ctx.id
		 FROM course c
		 JOIN context ctx ON ctx.contextlevel = $2 AND ctx.instanceid = c.id
		 WHERE c.id = $1
		 `

	course := &models.Course{}
	err := r.db.QueryRowContext(ctx, query, id, int(models.ContextCourse)).
		Scan(&course.ID, &course.FullName, &course.ShortName, &course.ContextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return course, nil
}
