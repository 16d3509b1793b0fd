/*
Package metrics contains HTTP services exposing node's Prometheus metrics and
pprof endpoints.
*/
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/tokenfee/feemap/pkg/config"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string

	lock      sync.Mutex
	listeners []net.Listener
	started   bool
}

// NewService configures logger and returns new service instance.
func NewService(name string, httpServers []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		http:        httpServers,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// Name returns service name.
func (ms *Service) Name() string {
	return ms.serviceType
}

// Start binds all configured addresses and runs http services on them. It
// returns an error if any of the addresses can't be listened on, nothing is
// started in this case.
func (ms *Service) Start() error {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled")
		return nil
	}
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if ms.started {
		return nil
	}
	listeners := make([]net.Listener, 0, len(ms.http))
	for _, srv := range ms.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return err
		}
		listeners = append(listeners, ln)
	}
	ms.listeners = listeners
	ms.started = true
	for i, srv := range ms.http {
		ln := listeners[i]
		ms.log.Info("service is running", zap.String("endpoint", ln.Addr().String()))
		go func(srv *http.Server) {
			err := srv.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				ms.log.Error("failed to serve",
					zap.String("endpoint", ln.Addr().String()),
					zap.Error(err))
			}
		}(srv)
	}
	return nil
}

// Addresses returns the addresses actually listened on. It's empty for a
// service that isn't running.
func (ms *Service) Addresses() []string {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	res := make([]string, 0, len(ms.listeners))
	for _, ln := range ms.listeners {
		res = append(res, ln.Addr().String())
	}
	return res
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if !ms.started {
		return
	}
	for _, srv := range ms.http {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			ms.log.Error("can't shut service down", zap.String("endpoint", srv.Addr), zap.Error(err))
		}
	}
	ms.listeners = nil
	ms.started = false
	_ = ms.log.Sync()
}
