// Package server initializes and runs the course image server.
// It opens the database, applies migrations, builds the blob store and the
// upload service, then serves the gRPC and REST transports until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/filex"
	"github.com/dmitrijs2005/courseimage/internal/logging"
	"github.com/dmitrijs2005/courseimage/internal/server/auth"
	"github.com/dmitrijs2005/courseimage/internal/server/blobstore"
	"github.com/dmitrijs2005/courseimage/internal/server/config"
	"github.com/dmitrijs2005/courseimage/internal/server/filestore"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/courseimage/internal/server/rest"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/courseimage/internal/server/grpc"
)

const scratchDirName = "wsupload"

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newS3Store = func(ctx context.Context, opts blobstore.S3Options) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, opts)
	}
)

// Transport is a server that runs until its context is done.
type Transport interface {
	Run(ctx context.Context) error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	transports map[string]Transport
}

// NewApp wires the service stack. Migrations run before anything is served.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, errors.Wrap(err, "db open error")
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, repos repomanager.RepositoryManager) (*App, error) {
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, errors.Wrap(err, "migration error")
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "blob store init error")
	}

	scratch, err := filex.NewScratchDir(c.TempDir, scratchDirName)
	if err != nil {
		return nil, errors.Wrap(err, "scratch dir init error")
	}

	storage := filestore.New(repos, blobs, c.WWWRoot)
	uploads := services.NewUploadService(db, repos, storage, scratch, logger, c)
	registry := api.DefaultRegistry()

	return &App{
		config: c,
		logger: logger,
		db:     db,
		transports: map[string]Transport{
			"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, logger, uploads, registry, c.SecretKey, c.MaxUploadBytes),
			"http": rest.NewHTTPServer(c.EndpointAddrHTTP, logger, uploads, registry, c.SecretKey, c.MaxUploadBytes),
		},
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobStore {
	case config.BlobStoreMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BlobStoreS3:
		return newS3Store(ctx, blobstore.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
	default:
		return nil, errors.Errorf("unknown blob store %q", c.BlobStore)
	}
}

// Run serves every transport until a signal arrives or one of them fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	return app.serve(ctx)
}

func (app *App) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for name, t := range app.transports {
		g.Go(func() error {
			if err := t.Run(ctx); err != nil {
				return errors.Wrapf(err, "%s server", name)
			}
			return nil
		})
	}

	return g.Wait()
}

// IssueToken writes a signed access token for userID to w.
func IssueToken(w io.Writer, c *config.Config, userID int64) error {
	if userID <= 0 {
		return errors.Errorf("invalid user id %d", userID)
	}

	tok, err := auth.GenerateToken(userID, []byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return errors.Wrap(err, "generate token")
	}

	_, err = fmt.Fprintln(w, tok)
	return err
}

// NewLogger builds the process logger on stdout.
func NewLogger(c *config.Config) logging.Logger {
	return logging.New(c.LogBackend, os.Stdout)
}
