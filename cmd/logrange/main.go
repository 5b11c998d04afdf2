// -----------------------------------------------------------------------
// Last Modified: Thursday, 30th July 2026
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/logrange/internal/app"
	"github.com/ternarybob/logrange/internal/common"
	"github.com/ternarybob/logrange/internal/server"
)

// configPaths is a custom flag type allowing multiple -config flags,
// later ones overriding earlier ones.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	logPathFlag  = flag.String("log-path", "", "Query log file path (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("logrange version %s\n", common.GetVersion())
		os.Exit(0)
	}

	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Validate config
	// 5. Print banner
	// 6. Build engine (may take seconds on a large log)
	// 7. Start HTTP server
	// 8. Block on SIGINT/SIGTERM
	// 9. Graceful shutdown

	if len(configFiles) == 0 {
		if _, err := os.Stat("logrange.toml"); err == nil {
			configFiles = append(configFiles, "logrange.toml")
		}
	}

	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tmp := arbor.NewLogger()
		tmp.Fatal().Err(err).Strs("paths", configFiles).Msg("failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(cfg, finalPort, *serverHost, *logPathFlag)

	logger := common.SetupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	common.PrintBanner(cfg, logger)

	started := time.Now()
	logger.Info().Str("log_path", cfg.Ingest.LogPath).Msg("building query index")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	logger.Info().Dur("elapsed", time.Since(started)).Msg("query index ready")

	shutdownChan := make(chan struct{})
	srv := server.New(application)
	srv.SetShutdownChannel(shutdownChan)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("server goroutine panicked")
			}
		}()
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	time.Sleep(100 * time.Millisecond)
	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("server ready - press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("interrupt signal received")
	case <-shutdownChan:
		logger.Info().Msg("shutdown requested via HTTP")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	common.PrintShutdownBanner(logger)
	common.Stop()
}
