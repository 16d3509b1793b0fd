package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/tokenfee/feemap/cli/cmdargs"
	"github.com/tokenfee/feemap/cli/options"
	"github.com/tokenfee/feemap/pkg/config"
	"github.com/tokenfee/feemap/pkg/core/policy"
	"github.com/tokenfee/feemap/pkg/core/storage"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns 'node' command.
func NewCommands() []cli.Command {
	var cfgFlags = []cli.Flag{options.Config, options.ConfigFile, options.Debug}
	cfgFlags = append(cfgFlags, options.Network...)
	return []cli.Command{
		{
			Name:      "node",
			Usage:     "Start a node serving the configured fee map",
			UsageText: "feemap node [--config-path path] [-d] [-p/-m/-t] [--config-file file]",
			Action:    startServer,
			Flags:     cfgFlags,
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, sigterm)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// node is a running fee map node along with its services.
type node struct {
	cfg      config.Config
	log      *zap.Logger
	logLevel *zap.AtomicLevel
	debug    bool

	store      storage.Store
	policy     *policy.Policy
	prometheus *metrics.Service
	pprof      *metrics.Service
}

func newNode(cfg config.Config, log *zap.Logger, logLevel *zap.AtomicLevel, debug bool) (*node, error) {
	store, err := options.InitStore(cfg.ApplicationConfiguration)
	if err != nil {
		return nil, err
	}
	p, err := policy.New(store, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &node{
		cfg:        cfg,
		log:        log,
		logLevel:   logLevel,
		debug:      debug,
		store:      store,
		policy:     p,
		prometheus: metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log),
		pprof:      metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log),
	}, nil
}

// applyFees applies fees from the given configuration to the node policy and
// logs the resulting responder ID.
func (n *node) applyFees(cfg config.Config) error {
	_, err := n.policy.Apply(cfg.ProtocolConfiguration.MinimumFees)
	if err != nil {
		return fmt.Errorf("failed to apply fee map: %w", err)
	}
	if base := cfg.ApplicationConfiguration.ResponderID; base != "" {
		n.log.Info("responder ID",
			zap.String("id", string(n.policy.ResponderID(feemap.ResponderID(base)))))
	}
	return nil
}

func (n *node) startServices() error {
	if err := n.prometheus.Start(); err != nil {
		return fmt.Errorf("failed to start Prometheus service: %w", err)
	}
	if err := n.pprof.Start(); err != nil {
		n.prometheus.ShutDown()
		return fmt.Errorf("failed to start Pprof service: %w", err)
	}
	return nil
}

func (n *node) shutdown() {
	n.pprof.ShutDown()
	n.prometheus.ShutDown()
	if err := n.store.Close(); err != nil {
		n.log.Error("failed to close the store", zap.Error(err))
	}
}

func serviceChanged(old, updated config.BasicService) bool {
	return old.Enabled != updated.Enabled || !slices.Equal(old.Addresses, updated.Addresses)
}

// reload applies new configuration. The store and the network can't be
// changed without a restart.
func (n *node) reload(cfg config.Config) {
	if cfg.ProtocolConfiguration.Magic != n.cfg.ProtocolConfiguration.Magic {
		n.log.Warn("ProtocolConfiguration.Magic change is ignored, restart the node to apply it")
	}
	if !n.debug {
		lvl, err := zap.ParseAtomicLevel(cfg.ApplicationConfiguration.LogLevel)
		if err == nil {
			n.logLevel.SetLevel(lvl.Level())
		}
	}
	if err := n.applyFees(cfg); err != nil {
		n.log.Error("fee map reload failed", zap.Error(err))
	} else {
		n.cfg.ProtocolConfiguration = cfg.ProtocolConfiguration
		n.cfg.ApplicationConfiguration.ResponderID = cfg.ApplicationConfiguration.ResponderID
	}
	oldApp, newApp := n.cfg.ApplicationConfiguration, cfg.ApplicationConfiguration
	if serviceChanged(oldApp.Prometheus, newApp.Prometheus) {
		n.prometheus = n.restartService(n.prometheus, metrics.NewPrometheusService(newApp.Prometheus, n.log))
		n.cfg.ApplicationConfiguration.Prometheus = newApp.Prometheus
	}
	if serviceChanged(oldApp.Pprof, newApp.Pprof) {
		n.pprof = n.restartService(n.pprof, metrics.NewPprofService(newApp.Pprof, n.log))
		n.cfg.ApplicationConfiguration.Pprof = newApp.Pprof
	}
}

// restartService stops old and starts updated in its place.
func (n *node) restartService(old, updated *metrics.Service) *metrics.Service {
	old.ShutDown()
	if err := updated.Start(); err != nil {
		n.log.Error("failed to restart service",
			zap.String("service", updated.Name()),
			zap.Error(err))
		return updated
	}
	n.log.Info("service restarted",
		zap.String("service", updated.Name()),
		zap.Strings("addresses", updated.Addresses()))
	return updated
}

// run serves until grace is done. Configuration is reloaded via loadConfig
// every time sighup is received from sigCh.
func (n *node) run(grace context.Context, sigCh <-chan os.Signal, loadConfig func() (config.Config, error)) error {
	defer n.shutdown()
	if err := n.applyFees(n.cfg); err != nil {
		return err
	}
	if err := n.startServices(); err != nil {
		return err
	}
	for {
		select {
		case <-grace.Done():
			n.log.Info("shutting down")
			return nil
		case sig := <-sigCh:
			if sig != sighup {
				continue
			}
			n.log.Info("SIGHUP received, reloading configuration")
			cfg, err := loadConfig()
			if err != nil {
				n.log.Error("can't reread the config file, signal ignored", zap.Error(err))
				continue
			}
			n.reload(cfg)
		}
	}
}

func startServer(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, logLevel, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	n, err := newNode(cfg, log, logLevel, ctx.Bool("debug"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sighup)
	defer signal.Stop(sigCh)

	err = n.run(newGraceContext(), sigCh, func() (config.Config, error) {
		return options.GetConfigFromContext(ctx)
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
