package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/logging"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"google.golang.org/grpc"
)

// Uploader is the service behind UploadCourseImage.
type Uploader interface {
	Upload(ctx context.Context, caller services.Caller, req *models.UploadRequest) (*models.UploadResult, error)
}

type GRPCServer struct {
	address   string
	uploads   Uploader
	registry  *api.Registry
	logger    logging.Logger
	jwtSecret []byte

	maxMsgSize int
}

// NewGRPCServer builds the gRPC transport. maxUploadBytes is the decoded
// image limit; messages may be as large as its base64 form plus the other
// request fields.
func NewGRPCServer(a string, l logging.Logger, uploads Uploader, registry *api.Registry, secretKey string, maxUploadBytes int64) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		uploads:    uploads,
		registry:   registry,
		jwtSecret:  []byte(secretKey),
		maxMsgSize: api.MaxMessageSize(maxUploadBytes),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on an existing listener until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(s.maxMsgSize),
		grpc.MaxSendMsgSize(s.maxMsgSize),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
	)

	api.RegisterCourseImageServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
