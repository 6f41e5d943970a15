package services

import (
	"context"
	"errors"
	"sync"

	"github.com/conneroisu/iconward/internal/server"
	"github.com/conneroisu/iconward/internal/watcher"
)

// ServeOptions contains options for the serve process
type ServeOptions struct {
	// Watch rebuilds the catalog when the icon directory changes.
	Watch bool
	// OriginPatterns are extra websocket origins.
	OriginPatterns []string
}

// ServeService runs the HTTP server.
type ServeService struct {
	container *Container
}

// NewServeService creates a new serve service
func NewServeService(c *Container) *ServeService {
	return &ServeService{container: c}
}

// NewServer builds the server without starting it.
func (s *ServeService) NewServer(opts ServeOptions) (*server.Server, error) {
	return server.New(server.Options{
		Addr:           s.container.Config.Server.Addr(),
		Factory:        s.container.NewCatalog,
		Logger:         s.container.Logger,
		OriginPatterns: opts.OriginPatterns,
	})
}

// Serve blocks until ctx is cancelled or the server fails.
func (s *ServeService) Serve(ctx context.Context, opts ServeOptions) error {
	srv, err := s.NewServer(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if opts.Watch && s.container.IconDir() != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := NewWatchService(s.container, 0).Watch(ctx, func(ctx context.Context, _ []watcher.ChangeEvent) {
				srv.Refresh(ctx)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				s.container.Logger.Warn(ctx, err, "Icon watcher stopped")
			}
		}()
	}

	err = srv.Start(ctx)
	cancel()
	wg.Wait()
	return err
}
