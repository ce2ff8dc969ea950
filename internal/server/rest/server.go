// Package rest exposes the task and account API over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// Authenticator resolves a bearer token into the calling principal.
type Authenticator interface {
	Validate(ctx context.Context, token string) (*models.Principal, error)
}

type HTTPServer struct {
	address         string
	shutdownTimeout time.Duration
	logger          logging.Logger

	auth    Authenticator
	users   *services.UserService
	tasks   *services.TaskService
	avatars *services.AvatarService

	handler http.Handler
}

func NewHTTPServer(
	addr string,
	shutdownTimeout time.Duration,
	l logging.Logger,
	auth Authenticator,
	us *services.UserService,
	ts *services.TaskService,
	as *services.AvatarService,
) *HTTPServer {
	s := &HTTPServer{
		address:         addr,
		shutdownTimeout: shutdownTimeout,
		logger:          l.With("module", "http_server"),
		auth:            auth,
		users:           us,
		tasks:           ts,
		avatars:         as,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
