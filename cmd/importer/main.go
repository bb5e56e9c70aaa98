package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lumina-app/lumina-import-go/internal/app"
	"github.com/lumina-app/lumina-import-go/internal/config"
	"github.com/lumina-app/lumina-import-go/internal/domain"
	"github.com/lumina-app/lumina-import-go/internal/importer"
	"github.com/lumina-app/lumina-import-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "fetch and extract without uploading images or writing profiles")
	delay := flag.Duration("delay", 0, "override the inter-request delay (e.g. 500ms)")
	concurrency := flag.Int("concurrency", 1, "bounded concurrency; >1 still rate-limits upstream calls")
	flag.Usage = usage
	flag.Parse()

	names := flag.Args()
	if len(names) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *delay > 0 {
		cfg.Import.Delay = *delay
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buildCtx, buildCancel := context.WithTimeout(ctx, 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	reqs := make([]*domain.ImportRequest, 0, len(names))
	for _, arg := range names {
		reqs = append(reqs, parseRequest(arg))
	}

	logger.Info("Starting import",
		zap.Int("requests", len(reqs)),
		zap.Bool("dry_run", *dryRun),
		zap.Duration("delay", cfg.Import.Delay),
	)

	outcomes := container.Importer.ImportMany(ctx, reqs, importer.Options{
		DryRun:      *dryRun,
		Concurrency: *concurrency,
	})

	for _, outcome := range outcomes {
		line := fmt.Sprintf("%-8s %s", outcome.Status, outcome.Name)
		if outcome.Reason != "" {
			line += " (" + outcome.Reason + ")"
		}
		fmt.Println(line)
	}

	summary := domain.Summarize(outcomes)
	fmt.Printf("\n%d imported, %d skipped, %d failed (of %d)\n",
		summary.Success, summary.Skipped, summary.Failed, summary.Total)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// parseRequest splits a "Name:Exact_Wiki_Title" argument; a bare name uses
// the default title derivation.
func parseRequest(arg string) *domain.ImportRequest {
	if idx := strings.Index(arg, ":"); idx > 0 {
		return &domain.ImportRequest{
			Name:      strings.TrimSpace(arg[:idx]),
			WikiTitle: strings.TrimSpace(arg[idx+1:]),
		}
	}
	return &domain.ImportRequest{Name: strings.TrimSpace(arg)}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: importer [flags] "Name" ["Name:Exact_Wiki_Title" ...]

Imports Wikipedia biographies into the profile store.

Flags:
`)
	flag.PrintDefaults()
}
