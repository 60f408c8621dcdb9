package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/capabilities"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/contexts"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/courses"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/files"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
	Contexts(db dbx.DBTX) contexts.Repository
	Courses(db dbx.DBTX) courses.Repository
	Users(db dbx.DBTX) users.Repository
	Capabilities(db dbx.DBTX) capabilities.Repository
}
