package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/railbooking/config"
	reservationsapi "github.com/Domenick1991/railbooking/internal/api/reservations_service_api"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const swaggerSpecURL = "/swagger/reservations.swagger.json"

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	gatewayCC  *grpc.ClientConn
}

// Handlers are the two transports served by Run. REST is the gin engine
// mounted under /api/ and /healthz. Interceptors wrap every gRPC call,
// including the ones the /v1/ gateway forwards.
type Handlers struct {
	GRPC         reservationsapi.ReservationServiceServer
	REST         http.Handler
	Interceptors []grpc.UnaryServerInterceptor
}

// Run starts gRPC and HTTP (REST, grpc-gateway and swagger) servers and blocks
// until the context is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, h Handlers, log logrus.FieldLogger) error {
	s, err := newServers(cfg, h, log)
	if err != nil {
		return err
	}
	defer s.gatewayCC.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()
	log.WithField("address", cfg.GRPC.Address).Info("gRPC server started")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.WithField("address", cfg.HTTP.Address).Info("HTTP server started")

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		return err
	case <-ctx.Done():
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, h Handlers, log logrus.FieldLogger) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(h.Interceptors...))
	reservationsapi.RegisterReservationServiceServer(grpcSrv, h.GRPC)

	cc, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gateway backend: %w", err)
	}
	gateway, err := newGateway(reservationsapi.NewClient(cc))
	if err != nil {
		_ = cc.Close()
		return nil, fmt.Errorf("register gateway: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           newHTTPHandler(cfg.HTTP, h.REST, gateway, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
		gatewayCC:  cc,
	}, nil
}

func newHTTPHandler(cfg config.HTTPConfig, rest, gateway http.Handler, log logrus.FieldLogger) http.Handler {
	handler := http.NewServeMux()
	if rest != nil {
		handler.Handle("/api/", rest)
		handler.Handle("/healthz", rest)
	}
	handler.Handle("/v1/", gateway)

	if cfg.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.SwaggerDir))
		handler.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		handler.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL(swaggerSpecURL)))
		log.WithField("dir", cfg.SwaggerDir).Debug("swagger docs enabled")
	}
	return handler
}
