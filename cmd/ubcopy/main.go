package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/ubcopy/internal/checksum"
	"github.com/bamsammich/ubcopy/internal/config"
	"github.com/bamsammich/ubcopy/internal/engine"
	"github.com/bamsammich/ubcopy/internal/event"
	"github.com/bamsammich/ubcopy/internal/metrics"
	"github.com/bamsammich/ubcopy/internal/stats"
	"github.com/bamsammich/ubcopy/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// options holds the parsed command line.
type options struct {
	srcFile       string
	dstFile       string
	overwrite     bool
	move          bool
	verify        bool
	bufferMB      int
	progress      bool
	preserveTimes bool
	hash          string
	syncThreshold string
	bwLimit       string
	verbose       bool
	quiet         bool
	logFile       string
	metricsFile   string
	benchmark     bool
	showVersion   bool
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ubcopy [flags] <source> <destination>",
		Short: "Copy one large file with unbuffered I/O and overlapped read/write",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			_, _, err := resolvePaths(opts, args)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(os.Stdout, "ubcopy %s\n", version)
				return nil
			}
			return runCopy(cmd, opts, args)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	f.StringVarP(&opts.srcFile, "sourcefile", "s", "", "source file (instead of the first argument)")
	f.StringVarP(&opts.dstFile, "destinationfile", "d", "", "destination file or directory (instead of the last argument)")
	f.BoolVarP(&opts.overwrite, "overwrite", "o", true, "replace an existing destination; -o=false skips it")
	f.BoolVarP(&opts.move, "move", "m", false, "remove the source after a successful copy")
	f.BoolVarP(&opts.verify, "verify", "c", false, "hash source and destination and compare")
	f.IntVarP(&opts.bufferMB, "buffer-size", "b", engine.DefaultBufferMB,
		fmt.Sprintf("block size in MB (max %d)", engine.MaxBufferMB))
	f.BoolVarP(&opts.progress, "progress", "p", false, "show copy progress")
	// -r is the old progress switch; a flag carries one shorthand, so it
	// gets its own hidden flag bound to the same option.
	f.BoolVarP(&opts.progress, "report-progress", "r", false, "show copy progress")
	_ = f.MarkHidden("report-progress")
	f.BoolVarP(&opts.preserveTimes, "preserve-times", "t", false, "copy access and modification times")
	f.StringVar(&opts.hash, "hash", string(checksum.Default), fmt.Sprintf("checksum algorithm %v", checksum.Algorithms()))
	f.StringVar(&opts.syncThreshold, "sync-threshold", "",
		"files smaller than SIZE use the buffered copy (default: one block)")
	f.StringVar(&opts.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	f.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for this run to FILE (textfile collector format)")
	f.BoolVar(&opts.benchmark, "benchmark", false, "measure throughput before copy and suggest a buffer size")

	rootCmd.SetGlobalNormalizationFunc(legacyFlagNames)

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

// legacyAliases maps the long option names of the original ubcopy
// command line onto the current flags.
var legacyAliases = map[string]string{
	"overwritedestination": "overwrite",
	"movefile":             "move",
	"checksum":             "verify",
	"buffersize":           "buffer-size",
	"reportprogress":       "progress",
}

func legacyFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := legacyAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func run() int {
	var opts options
	rootCmd := newRootCmd(&opts)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// resolvePaths merges the -s/-d flags with the positional arguments.
func resolvePaths(opts *options, args []string) (src, dst string, err error) {
	rest := args
	src, dst = opts.srcFile, opts.dstFile
	if src == "" {
		if len(rest) == 0 {
			return "", "", errors.New("missing source")
		}
		src, rest = rest[0], rest[1:]
	}
	if dst == "" {
		if len(rest) == 0 {
			return "", "", errors.New("missing destination")
		}
		dst, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return "", "", fmt.Errorf("unexpected arguments: %v", rest)
	}
	return src, dst, nil
}

//nolint:revive // cognitive-complexity: CLI entry point wires logging, presenter and engine
func runCopy(cmd *cobra.Command, opts *options, args []string) error {
	src, dst, err := resolvePaths(opts, args)
	if err != nil {
		return err
	}

	// Load optional config file.
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	applyConfigDefaults(cmd, cfg.Defaults, opts)

	var syncThreshold, bwLimit int64
	if opts.syncThreshold != "" {
		if syncThreshold, err = config.ParseSize(opts.syncThreshold); err != nil {
			return fmt.Errorf("invalid --sync-threshold: %w", err)
		}
	}
	if opts.bwLimit != "" {
		if bwLimit, err = config.ParseSize(opts.bwLimit); err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	logger, fileLogger, closeLog, err := setupLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	if opts.benchmark {
		res, benchErr := engine.RunBenchmark(context.Background(), src, benchDir(dst))
		if benchErr != nil {
			slog.Warn("benchmark failed", "error", benchErr)
		} else {
			slog.Debug("benchmark", "result", engine.FormatBenchmark(res))
			printBenchmark(res)
			if !cmd.Flags().Changed("buffer-size") {
				opts.bufferMB = res.SuggestedBufferMB
			}
		}
	}

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	presenterEvents := (<-chan event.Event)(events)
	if fileLogger != nil {
		presenterEvents = ui.TeeEvents(events, fileLogger)
	}

	tty := ui.Probe(os.Stderr)
	presenter := ui.NewPresenter(ui.Config{
		Writer:     os.Stdout,
		ErrWriter:  os.Stderr,
		Stats:      collector,
		IsTTY:      tty.TTY,
		Quiet:      opts.quiet,
		NoProgress: !opts.progress,
		Width:      tty.Width,
	})

	job := engine.NewJob(src, dst)
	job.Overwrite = opts.overwrite
	job.Move = opts.move
	job.Verify = opts.verify
	job.BufferMB = opts.bufferMB
	job.Progress = opts.progress
	job.PreserveTimes = opts.preserveTimes
	job.Hash = checksum.Algorithm(opts.hash)
	job.SyncThreshold = syncThreshold
	job.BWLimit = bwLimit
	job.Events = events
	job.Stats = collector

	slog.Debug("starting copy",
		"src", src,
		"dst", dst,
		"buffer_mb", job.BufferMB,
		"verify", job.Verify,
		"move", job.Move,
	)

	// Presenter runs in the background, engine in the foreground.
	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := engine.Run(ctx, job)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}

	if opts.verbose && !opts.quiet {
		printReport(result)
	}
	if opts.metricsFile != "" {
		m := metrics.New()
		m.Observe(result.Status.String(), result.Mode.String(), result.Stats)
		if err := m.WriteFile(opts.metricsFile); err != nil {
			slog.Warn("failed to write metrics", "path", opts.metricsFile, "error", err)
		}
	}

	if code := exitCode(result); code != 0 {
		var mismatch *engine.MismatchError
		if errors.As(result.Err, &mismatch) {
			slog.Error("checksum mismatch",
				"dst", mismatch.Path,
				"algorithm", mismatch.Algorithm,
				"source", mismatch.SrcDigest,
				"destination", mismatch.DstDigest)
		} else {
			slog.Error("copy failed", "error", result.Err)
		}
		return &exitError{code: code}
	}
	return nil
}

func printBenchmark(res engine.BenchmarkResult) {
	ui.PrintTable(os.Stderr, []string{"io", "read", "write", "suggested buffer"}, [][]string{{
		res.IO.String(),
		ui.FormatRate(res.ReadBytesPerSec),
		ui.FormatRate(res.WriteBytesPerSec),
		fmt.Sprintf("%d MB", res.SuggestedBufferMB),
	}})
}

// printReport lists the job result with -v.
func printReport(res engine.Result) {
	rows := [][]string{
		{"status", res.Status.String()},
		{"source", res.Src},
		{"destination", res.Dst},
		{"size", ui.FormatBytes(res.Size)},
	}
	if res.Status != engine.StatusSkipped {
		rows = append(rows,
			[]string{"mode", res.Mode.String()},
			[]string{"blocks", ui.FormatCount(res.Stats.BlocksWritten)},
			[]string{"tail", ui.FormatBytes(res.Stats.TailBytes)},
		)
	}
	if res.SrcDigest != "" {
		rows = append(rows, []string{"source digest", res.SrcDigest})
	}
	if res.DstDigest != "" {
		rows = append(rows, []string{"destination digest", res.DstDigest})
	}
	ui.PrintTable(os.Stderr, nil, rows)
}

// setupLogging builds the stderr text handler and, with --log, fans out to a
// JSON file handler as well. fileLogger writes to the JSON file only and is
// nil without --log.
func setupLogging(opts *options) (logger, fileLogger *slog.Logger, closeLog func(), err error) {
	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	} else if !opts.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	if opts.logFile == "" {
		return slog.New(textHandler), nil, func() {}, nil
	}

	lf, err := os.Create(opts.logFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open log file: %w", err)
	}
	jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	closeLog = func() { _ = lf.Close() } //nolint:errcheck // best-effort close of the log file
	return slog.New(ui.NewMultiHandler(textHandler, jsonHandler)), slog.New(jsonHandler), closeLog, nil
}

// benchDir is the directory the benchmark writes its scratch file into.
func benchDir(dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return dst
	}
	return filepath.Dir(dst)
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) {
	changed := cmd.Flags().Changed
	if !changed("buffer-size") && defaults.BufferMB != nil {
		opts.bufferMB = *defaults.BufferMB
	}
	if !changed("overwrite") && defaults.Overwrite != nil {
		opts.overwrite = *defaults.Overwrite
	}
	if !changed("verify") && defaults.Verify != nil {
		opts.verify = *defaults.Verify
	}
	if !changed("progress") && !changed("report-progress") && defaults.Progress != nil {
		opts.progress = *defaults.Progress
	}
	if !changed("preserve-times") && defaults.PreserveTimes != nil {
		opts.preserveTimes = *defaults.PreserveTimes
	}
	if !changed("hash") && defaults.Hash != nil {
		opts.hash = *defaults.Hash
	}
	if !changed("sync-threshold") && defaults.SyncThreshold != nil {
		opts.syncThreshold = *defaults.SyncThreshold
	}
	if !changed("bwlimit") && defaults.BWLimit != nil {
		opts.bwLimit = *defaults.BWLimit
	}
}

// exitCode maps a job result to the process exit status: 0 for a copy or
// skip, 1 for a checksum mismatch, 2 for anything else.
func exitCode(res engine.Result) int {
	switch {
	case res.Status == engine.StatusSucceeded || res.Status == engine.StatusSkipped:
		return 0
	case errors.Is(res.Err, engine.ErrChecksumMismatch):
		return 1
	default:
		return 2
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
