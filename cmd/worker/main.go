package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/config"
	"github.com/GoSim-25-26J-441/projectsync/internal/bootstrap"
	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
)

const usage = "usage: worker [-direct] <flush|pending>"

func main() {
	direct := flag.Bool("direct", false, "open the local stores in-process instead of calling the running api")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal(usage)
	}
	command := flag.Arg(0)
	if command != "flush" && command != "pending" {
		log.Fatalf("unknown command %q\n%s", command, usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, logger, command, *direct)
	stop()
	_ = logger.Sync()
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, command string, direct bool) error {
	logger = logging.OrNop(logger)
	client := NewAPIClient(cfg.Worker.APIURL)
	var syncer Syncer = client

	if direct {
		// only one process may flush a given set of stores
		if client.Reachable(ctx) {
			return fmt.Errorf("api is running at %s, run without -direct", cfg.Worker.APIURL)
		}

		app, err := bootstrap.NewApp(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("open stores: %w", err)
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("close stores", zap.Error(err))
			}
		}()
		syncer = LocalSyncer{Repo: app.Repo}
	}

	switch command {
	case "flush":
		return RunFlush(ctx, syncer, os.Stdout)
	default:
		return RunPending(ctx, syncer, os.Stdout)
	}
}
