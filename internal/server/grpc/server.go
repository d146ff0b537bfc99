// Package grpc exposes the object service over gRPC. Messages are plain Go
// structs carried by a JSON codec.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/integrity"
	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/server/services"
	"google.golang.org/grpc"
)

// ObjectService is what the handlers need from the service layer.
type ObjectService interface {
	Upload(ctx context.Context, actorID string, in services.UploadInput) (*models.EncryptedObject, error)
	Download(ctx context.Context, actorID, id string) (*services.DownloadResult, error)
	Verify(ctx context.Context, actorID, id string) (integrity.Result, error)
	Share(ctx context.Context, actorID, id string, target services.PrincipalRef) (*models.EncryptedObject, error)
	Unshare(ctx context.Context, actorID, id, principalID string) (*models.EncryptedObject, error)
	Delete(ctx context.Context, actorID, id string) error
	AuditLog(ctx context.Context, actorID, id string) ([]models.AuditEvent, error)
	List(ctx context.Context, actorID string) (*services.Listing, error)
}

type GRPCServer struct {
	address    string
	objects    ObjectService
	logger     logging.Logger
	jwtSecret  []byte
	maxMsgSize int

	// shutdownTimeout bounds GracefulStop; zero waits for in-flight calls
	// indefinitely.
	shutdownTimeout time.Duration
}

// NewGRPCServer builds a server listening on a. maxMsgSize bounds request
// and response sizes; zero keeps the gRPC default.
func NewGRPCServer(a string, l logging.Logger, objects ObjectService, secretKey string, maxMsgSize int) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		objects:    objects,
		jwtSecret:  []byte(secretKey),
		maxMsgSize: maxMsgSize,
	}
}

// WithShutdownTimeout makes the server force-close connections when a
// graceful stop takes longer than d.
func (s *GRPCServer) WithShutdownTimeout(d time.Duration) *GRPCServer {
	s.shutdownTimeout = d
	return s
}

func (s *GRPCServer) newServer() *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	}
	if s.maxMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.maxMsgSize), grpc.MaxSendMsgSize(s.maxMsgSize))
	}

	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
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

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		s.stop(srv)
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) stop(srv *grpc.Server) {
	if s.shutdownTimeout <= 0 {
		srv.GracefulStop()
		return
	}

	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn(context.Background(), "graceful stop timed out, closing connections", "timeout", s.shutdownTimeout)
		srv.Stop()
	}
}
