package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/dagnotify/cli/options"
	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notifier"
	"github.com/nspcc-dev/dagnotify/pkg/rpccore"
	"github.com/nspcc-dev/dagnotify/pkg/services/metrics"
	"github.com/nspcc-dev/dagnotify/pkg/services/rpcsrv"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// coreNotifierName is the name of the notifier serving RPC subscriptions.
const coreNotifierName = "rpc-core"

// NewCommands returns 'node' command.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "node",
			Usage:     "start a node serving notification subscriptions over RPC",
			UsageText: "dagnode node [--config-file file] [--debug]",
			Action:    startServer,
			Flags:     []cli.Flag{options.ConfigFile, options.Debug},
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// node holds the services of a running node.
type node struct {
	log        *zap.Logger
	level      *zap.AtomicLevel
	cfg        config.ApplicationConfiguration
	notifier   *notifier.Notifier
	rpc        *rpcsrv.Server
	prometheus *metrics.Service
	pprof      *metrics.Service
	errChan    chan error
}

func startServer(ctx *cli.Context) error {
	if len(ctx.Args()) != 0 {
		return cli.NewExitError(fmt.Errorf("unexpected arguments: %v", ctx.Args()), 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	debug := ctx.Bool("debug")
	log, level, err := options.HandleLoggingParams(debug, cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	grace, cancel := context.WithCancel(newGraceContext())
	defer cancel()

	n, err := newNode(cfg.ApplicationConfiguration, log, level)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err = n.start(); err != nil {
		n.shutdown()
		return cli.NewExitError(err, 1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sighup)
	defer signal.Stop(sigCh)

	err = n.run(grace, sigCh, func() (config.ApplicationConfiguration, error) {
		newCfg, err := options.GetConfigFromContext(ctx)
		return newCfg.ApplicationConfiguration, err
	}, debug)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func newNode(cfg config.ApplicationConfiguration, log *zap.Logger, level *zap.AtomicLevel) (*node, error) {
	ntf, err := notifier.New(coreNotifierName, cfg.Notifier, log)
	if err != nil {
		return nil, fmt.Errorf("can't create notifier: %w", err)
	}
	errChan := make(chan error, len(cfg.RPC.Addresses)+1)
	rpcServer := rpcsrv.New(rpccore.NewService(ntf, config.Version, log), cfg.RPCConfig(), log, errChan)
	return &node{
		log:        log,
		level:      level,
		cfg:        cfg,
		notifier:   ntf,
		rpc:        &rpcServer,
		prometheus: metrics.NewPrometheusService(cfg.Prometheus, log),
		pprof:      metrics.NewPprofService(cfg.Pprof, log),
		errChan:    errChan,
	}, nil
}

func (n *node) start() error {
	if err := n.notifier.Start(); err != nil {
		return fmt.Errorf("can't start notifier: %w", err)
	}
	if err := n.prometheus.Start(); err != nil {
		return fmt.Errorf("failed to start Prometheus service: %w", err)
	}
	if err := n.pprof.Start(); err != nil {
		return fmt.Errorf("failed to start Pprof service: %w", err)
	}
	n.rpc.Start()
	n.log.Info("node started", zap.String("version", config.Version))
	return nil
}

// run serves until the context is canceled or some service fails. SIGHUP
// rereads the configuration with reload and applies logging level and
// metrics services changes.
func (n *node) run(ctx context.Context, sigCh <-chan os.Signal, reload func() (config.ApplicationConfiguration, error), debug bool) error {
	var shutdownErr error
Main:
	for {
		select {
		case err := <-n.errChan:
			shutdownErr = fmt.Errorf("server error: %w", err)
			break Main
		case sig := <-sigCh:
			n.log.Info("signal received", zap.Stringer("name", sig))
			cfgnew, err := reload()
			if err != nil {
				n.log.Warn("can't reread the config file, signal ignored", zap.Error(err))
				break // Continue working.
			}
			n.reconfigure(cfgnew, debug)
		case <-ctx.Done():
			break Main
		}
	}
	n.shutdown()
	return shutdownErr
}

// reconfigure applies the changes that don't need a restart of the node.
func (n *node) reconfigure(cfgnew config.ApplicationConfiguration, debug bool) {
	if !cfgnew.Notifier.Equals(n.cfg.Notifier) || !cfgnew.RPC.Equals(n.cfg.RPC) {
		n.log.Warn("Notifier and RPC configuration changes require restart, ignoring them")
	}
	level, err := options.GetLogLevel(debug, cfgnew)
	if err != nil {
		n.log.Warn("wrong LogLevel in ApplicationConfiguration, ignoring it", zap.Error(err))
	} else if n.level != nil {
		n.level.SetLevel(level)
	}

	if !cfgnew.Prometheus.Equals(n.cfg.Prometheus) {
		n.prometheus.ShutDown()
		n.prometheus = metrics.NewPrometheusService(cfgnew.Prometheus, n.log)
		if err := n.prometheus.Start(); err != nil {
			n.log.Error("failed to restart Prometheus service", zap.Error(err))
		}
		n.cfg.Prometheus = cfgnew.Prometheus
	}
	if !cfgnew.Pprof.Equals(n.cfg.Pprof) {
		n.pprof.ShutDown()
		n.pprof = metrics.NewPprofService(cfgnew.Pprof, n.log)
		if err := n.pprof.Start(); err != nil {
			n.log.Error("failed to restart Pprof service", zap.Error(err))
		}
		n.cfg.Pprof = cfgnew.Pprof
	}
	n.cfg.LogLevel = cfgnew.LogLevel
}

// shutdown stops RPC first so that no new listeners appear, then waits for
// the notifier to deliver everything queued.
func (n *node) shutdown() {
	n.rpc.Shutdown()
	n.pprof.ShutDown()
	n.prometheus.ShutDown()
	if err := n.notifier.Join(); err != nil {
		n.log.Warn("notifier shutdown error", zap.Error(err))
	}
	n.log.Info("node stopped")
}
