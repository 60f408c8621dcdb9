// Package rest exposes the web-service functions over the Moodle REST
// protocol: POST /webservice/rest/server.php with wstoken and wsfunction.
package rest

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/logging"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"github.com/gin-gonic/gin"
)

// EndpointPath is where Moodle clients send web-service calls.
const EndpointPath = "/webservice/rest/server.php"

const (
	shutdownTimeout   = 5 * time.Second
	formOverheadBytes = 64 << 10
)

// Uploader is the service behind local_ws_subir_imagen_curso.
type Uploader interface {
	Upload(ctx context.Context, caller services.Caller, req *models.UploadRequest) (*models.UploadResult, error)
}

type HTTPServer struct {
	address   string
	uploads   Uploader
	registry  *api.Registry
	logger    logging.Logger
	jwtSecret []byte
	engine    *gin.Engine

	// maxBodyBytes caps request bodies; zero disables the cap.
	maxBodyBytes int64
}

// NewHTTPServer builds the REST transport. maxUploadBytes is the decoded
// image limit; the body cap leaves room for its percent-encoded base64 form.
func NewHTTPServer(a string, l logging.Logger, uploads Uploader, registry *api.Registry, secretKey string, maxUploadBytes int64) *HTTPServer {
	s := &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		uploads:   uploads,
		registry:  registry,
		jwtSecret: []byte(secretKey),
	}
	if maxUploadBytes > 0 {
		s.maxBodyBytes = 3*int64(base64.StdEncoding.EncodedLen(int(maxUploadBytes))) + formOverheadBytes
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.POST(EndpointPath, s.serveFunction)

	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on an existing listener until ctx is done, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Info(c.Request.Context(), "http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"wsfunction", c.Request.FormValue("wsfunction"),
		"duration", time.Since(start).String(),
	)
}
