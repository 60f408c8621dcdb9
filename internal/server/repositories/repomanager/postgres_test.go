package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/capabilities"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/contexts"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/courses"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/files"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	if f := m.Files(db); f == nil {
		t.Fatal("Files() nil")
	}
	if c := m.Contexts(db); c == nil {
		t.Fatal("Contexts() nil")
	}
	if c := m.Courses(db); c == nil {
		t.Fatal("Courses() nil")
	}
	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if c := m.Capabilities(db); c == nil {
		t.Fatal("Capabilities() nil")
	}

	var _ files.Repository = m.Files(db)
	var _ contexts.Repository = m.Contexts(db)
	var _ courses.Repository = m.Courses(db)
	var _ users.Repository = m.Users(db)
	var _ capabilities.Repository = m.Capabilities(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
