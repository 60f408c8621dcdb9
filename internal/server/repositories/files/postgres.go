package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const fileColumns = `id, contenthash, pathnamehash, contextid, component, filearea, itemid,
	filepath, filename, userid, filesize, mimetype, timecreated, timemodified`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the row and fills in its id. A taken pathnamehash yields
// common.ErrFileExists.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (contenthash, pathnamehash, contextid, component, filearea, itemid,
			filepath, filename, userid, filesize, mimetype, timecreated, timemodified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	if file.PathnameHash == "" {
		file.PathnameHash = file.FileTuple.PathnameHash()
	}

	err := r.db.QueryRowContext(ctx, query,
		file.ContentHash, file.PathnameHash, file.ContextID, file.Component, file.FileArea, file.ItemID,
		file.FilePath, file.FileName, file.UserID, file.FileSize, nullString(file.MimeType),
		file.TimeCreated, file.TimeModified).Scan(&file.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrFileExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

// Get returns the file at tuple or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, tuple models.FileTuple) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE pathnamehash = $1`

	file, err := scanFile(r.db.QueryRowContext(ctx, query, tuple.PathnameHash()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// Exists reports whether a file occupies tuple.
func (r *PostgresRepository) Exists(ctx context.Context, tuple models.FileTuple) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM files WHERE pathnamehash = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tuple.PathnameHash()).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// ItemInUse reports whether any file uses the given item of an area.
func (r *PostgresRepository) ItemInUse(ctx context.Context, contextID int64, component, fileArea string, itemID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM files
			WHERE contextid = $1 AND component = $2 AND filearea = $3 AND itemid = $4)
	`

	var used bool
	if err := r.db.QueryRowContext(ctx, query, contextID, component, fileArea, itemID).Scan(&used); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return used, nil
}

// DeleteArea removes every file matching filter and returns how many went.
func (r *PostgresRepository) DeleteArea(ctx context.Context, filter models.AreaFilter) (int64, error) {
	where, args := areaWhere(filter)
	query := `DELETE FROM files WHERE ` + where

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func areaWhere(filter models.AreaFilter) (string, []any) {
	where := `contextid = $1 AND component = $2 AND filearea = $3`
	args := []any{filter.ContextID, filter.Component, filter.FileArea}
	if filter.ItemID != nil {
		where += ` AND itemid = $4`
		args = append(args, *filter.ItemID)
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var (
		f        models.File
		userID   sql.NullInt64
		mimeType sql.NullString
	)
	err := row.Scan(&f.ID, &f.ContentHash, &f.PathnameHash, &f.ContextID, &f.Component, &f.FileArea, &f.ItemID,
		&f.FilePath, &f.FileName, &userID, &f.FileSize, &mimeType, &f.TimeCreated, &f.TimeModified)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := userID.Int64
		f.UserID = &id
	}
	f.MimeType = mimeType.String
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
