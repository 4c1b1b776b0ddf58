// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/morphit"
	"github.com/poiesic/morphit/bridge"
	"github.com/poiesic/morphit/config"
	"github.com/poiesic/morphit/exchange"
	"github.com/poiesic/morphit/frontend"
	"github.com/poiesic/morphit/launcher"
	"github.com/poiesic/morphit/lexicon"
	"github.com/poiesic/morphit/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

const terminateTimeout = 5 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (overrides bridge.database)",
		}
	}
	lexiconFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "lexicon",
			Usage: "YAML file merged over the built-in keyword tables (overrides bridge.lexicon)",
		}
	}

	return &cli.App{
		Name:  "morphit",
		Usage: "Turn character descriptions into morph target values",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"MORPHIT_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Print the parameters a description maps to",
				ArgsUsage: "[prompt]",
				Action:    analyzeCommand,
				Flags: []cli.Flag{
					lexiconFlag(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Analyze one prompt per line of this file (- for stdin)",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of prompts analyzed concurrently",
						Value:   runtime.NumCPU(),
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N prompts",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report progress",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:   "bridge",
				Usage:  "Watch the exchange and apply requests to the scene",
				Action: bridgeCommand,
				Flags: []cli.Flag{
					dbFlag(),
					lexiconFlag(),
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Polling interval (overrides bridge.interval)",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the web form that launches and drives the bridge",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address (overrides server.addr)",
					},
				},
			},
			{
				Name:  "scene",
				Usage: "Manage the characters of a scene",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Create the scene's characters and their parameters",
						Action: sceneInitCommand,
						Flags: []cli.Flag{
							dbFlag(),
							lexiconFlag(),
							&cli.StringFlag{
								Name:    "manifest",
								Aliases: []string{"m"},
								Usage:   "YAML manifest listing characters and parameters",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Replace characters that already exist",
							},
						},
					},
					{
						Name:      "show",
						Usage:     "Print characters and their active parameters",
						ArgsUsage: "[name]",
						Action:    sceneShowCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.BoolFlag{
								Name:  "all",
								Usage: "Include parameters at zero",
							},
						},
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Print recently processed requests",
				Action: historyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print entries as JSON",
					},
				},
			},
		},
	}
}

// loadConfig reads --config and applies the command's overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	var opts []config.ConfigOption
	if db := c.String("db"); db != "" {
		opts = append(opts, config.WithDatabase(db))
	}
	if path := c.String("lexicon"); path != "" {
		opts = append(opts, config.WithLexicon(path))
	}
	if addr := c.String("addr"); addr != "" {
		opts = append(opts, config.WithServerAddr(addr))
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if interval := c.Duration("interval"); interval > 0 {
		cfg.Bridge.Interval = interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadLexicon(cfg *config.Config) (*lexicon.Lexicon, error) {
	if cfg.Bridge.Lexicon == "" {
		return lexicon.Default(), nil
	}
	return lexicon.LoadFile(cfg.Bridge.Lexicon)
}

// exchanger is a transport usable from both ends.
type exchanger interface {
	exchange.Transport
	exchange.Requester
}

// newExchange builds the configured transport. The returned function
// releases its connections.
func newExchange(cfg *config.Config, logger *slog.Logger) (exchanger, func() error, error) {
	opts := []exchange.Option{
		exchange.WithLogger(logger),
		exchange.WithPollInterval(cfg.Exchange.PollInterval),
	}

	switch cfg.Exchange.Driver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Exchange.Redis.Addr,
			Password: cfg.Exchange.Redis.Password,
			DB:       cfg.Exchange.Redis.DB,
		})
		opts = append(opts,
			exchange.WithPrefix(cfg.Exchange.Redis.Prefix),
			exchange.WithResponseTTL(cfg.Exchange.Redis.TTL))
		t, err := exchange.NewRedisTransport(client, opts...)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return t, client.Close, nil
	default:
		t, err := exchange.NewFileTransport(cfg.Exchange.Dir, opts...)
		if err != nil {
			return nil, nil, err
		}
		return t, func() error { return nil }, nil
	}
}

// exchangeLocation describes the configured transport for humans.
func exchangeLocation(cfg *config.Config) string {
	if cfg.Exchange.Driver == config.DriverRedis {
		return fmt.Sprintf("redis://%s/%d (prefix %s)", cfg.Exchange.Redis.Addr, cfg.Exchange.Redis.DB, cfg.Exchange.Redis.Prefix)
	}
	if abs, err := filepath.Abs(cfg.Exchange.Dir); err == nil {
		return abs
	}
	return cfg.Exchange.Dir
}

func openDatabase(cfg *config.Config) (*morphit.Database, error) {
	lex, err := loadLexicon(cfg)
	if err != nil {
		return nil, err
	}
	db, err := morphit.NewDatabase(cfg.Bridge.Database, morphit.WithLexicon(lex))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func bridgeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	transport, closeExchange, err := newExchange(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	defer closeExchange()

	watcher, err := db.NewWatcher(ctx, transport,
		bridge.WithInterval(cfg.Bridge.Interval),
		bridge.WithTargets(cfg.Bridge.MaleTarget, cfg.Bridge.FemaleTarget))
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Bridge.Database)
	fmt.Fprintf(c.App.ErrWriter, "Exchange: %s\n", exchangeLocation(cfg))
	fmt.Fprintf(c.App.ErrWriter, "Interval: %s\n", cfg.Bridge.Interval)
	fmt.Fprintln(c.App.ErrWriter)

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	watcher.Wait()
	slog.Info("bridge stopped")
	return nil
}

// hostArgs returns the launcher arguments, forwarding --config to the
// default bridge command so both processes share one exchange.
func hostArgs(c *cli.Context, cfg *config.Config) []string {
	if len(cfg.Host.Args) > 0 {
		return cfg.Host.Args
	}
	args := append([]string(nil), launcher.DefaultArgs...)
	if path := c.String("config"); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		args = append([]string{"--config", path}, args...)
	}
	return args
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !strings.EqualFold(c.String("log-level"), "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	requester, closeExchange, err := newExchange(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	defer closeExchange()

	host, err := launcher.New(cfg.Host.Executable, cfg.Host.Model,
		launcher.WithArgs(hostArgs(c, cfg)...),
		launcher.WithStartupGrace(cfg.Host.StartupGrace),
		launcher.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create launcher: %w", err)
	}
	defer func() {
		if host.Running() {
			if err := host.Terminate(terminateTimeout); err != nil {
				slog.Warn("failed to stop host", "error", err)
			}
		}
	}()

	srv, err := frontend.New(requester, host,
		frontend.WithMetrics(m),
		frontend.WithTimeouts(cfg.Exchange.Timeout, cfg.Exchange.StatusTimeout),
		frontend.WithAllowOrigins(cfg.Server.AllowOrigins...),
		frontend.WithExchangeLocation(exchangeLocation(cfg)))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Listening: http://%s\n", cfg.Server.Addr)
	fmt.Fprintf(c.App.ErrWriter, "Host: %s\n", strings.Join(host.Command(), " "))
	fmt.Fprintf(c.App.ErrWriter, "Exchange: %s\n", exchangeLocation(cfg))
	fmt.Fprintln(c.App.ErrWriter)

	return srv.Run(ctx, cfg.Server.Addr)
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
