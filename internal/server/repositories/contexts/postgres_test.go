package contexts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "contextlevel", "instanceid", "path", "depth"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetByID_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM context WHERE id = \$1`).
		WithArgs(int64(27)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(27), 50, int64(5), "/1/3/27", 3))

	c, err := repo.GetByID(context.Background(), 27)
	require.NoError(t, err)
	assert.Equal(t, &models.Context{ID: 27, ContextLevel: models.ContextCourse, InstanceID: 5, Path: "/1/3/27", Depth: 3}, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByInstance_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM context WHERE contextlevel = \$1 AND instanceid = \$2`).
		WithArgs(30, int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(12), 30, int64(7), "/1/12", 2))

	c, err := repo.GetByInstance(context.Background(), models.ContextUser, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.ID)
	assert.Equal(t, models.ContextUser, c.ContextLevel)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM context`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM context`).WillReturnError(errors.New("db down"))

	_, err := repo.GetByInstance(context.Background(), models.ContextCourse, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}
