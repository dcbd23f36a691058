// Command sharky prints the strings within a Hamming distance of a name,
// optionally keeping only those found in a dictionary.
//
// Usage:
//
//	sharky [flags] <max-distance> <name> [dictionary-path]
//
// The dictionary path may be a local file (plain, .zst, .gz or .lz4),
// s3://bucket/key, minio://endpoint/bucket/key or minios://endpoint/bucket/key.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hupe1980/sharky"
	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/internal/conv"
)

type settings struct {
	cfg       sharky.Config
	logLevel  slog.Level
	logFormat string
	limits    sharky.ResourceLimits
	strategy  *buffer.Strategy
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	s, err := parseArgs(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return sharky.ExitOK
		}
		fmt.Fprintf(stderr, "sharky: %v\n", err)
		return sharky.ExitCode(err)
	}

	var logger *sharky.Logger
	opts := &slog.HandlerOptions{Level: s.logLevel}
	if s.logFormat == "json" {
		logger = sharky.NewLogger(slog.NewJSONHandler(stderr, opts))
	} else {
		logger = sharky.NewLogger(slog.NewTextHandler(stderr, opts))
	}

	pipelineOpts := []sharky.Option{
		sharky.WithLogger(logger),
		sharky.WithResourceLimits(s.limits),
	}
	if s.strategy != nil {
		pipelineOpts = append(pipelineOpts, sharky.WithWriterStrategy(*s.strategy))
	}

	p, err := sharky.New(s.cfg, pipelineOpts...)
	if err == nil {
		err = p.Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(stderr, "sharky: %v\n", err)
	}
	return sharky.ExitCode(err)
}

func parseArgs(args []string, getenv func(string) string, stderr io.Writer) (*settings, error) {
	fs := flag.NewFlagSet("sharky", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: sharky [flags] <max-distance> <name> [dictionary-path]")
		fs.PrintDefaults()
	}

	logLevel := fs.String("log-level", getenv("SHARKY_LOG_LEVEL"), "log level: debug, info, warn or error (env SHARKY_LOG_LEVEL)")
	logFormat := fs.String("log-format", getenv("SHARKY_LOG_FORMAT"), "log format: text or json (env SHARKY_LOG_FORMAT)")
	memLimit := fs.String("memory-limit", getenv("SHARKY_MEMORY_LIMIT"), "buffer memory limit, e.g. 64MiB (env SHARKY_MEMORY_LIMIT)")
	ioLimit := fs.String("io-limit", getenv("SHARKY_IO_LIMIT"), "pipe throughput limit per second, e.g. 1MiB (env SHARKY_IO_LIMIT)")
	strategy := fs.String("strategy", "", "writer buffer strategy: mmap, aligned or heap")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", sharky.ErrInvalidConfig, err)
	}

	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected 2 or 3 arguments, got %d", sharky.ErrInvalidConfig, len(rest))
	}

	distance, err := strconv.Atoi(rest[0])
	if err != nil {
		fs.Usage()
		return nil, fmt.Errorf("%w: max distance %q is not an integer", sharky.ErrInvalidConfig, rest[0])
	}

	s := &settings{
		cfg: sharky.Config{
			MaxDistance: distance,
			Name:        rest[1],
			Output:      os.Stdout,
		},
		logFormat: *logFormat,
	}
	if len(rest) == 3 {
		s.cfg.DictionaryPath = rest[2]
	}

	if s.logLevel, err = sharky.ParseLevel(*logLevel); err != nil {
		return nil, err
	}
	switch s.logFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("%w: log format %q", sharky.ErrInvalidConfig, s.logFormat)
	}

	if s.limits.MemoryBytes, err = parseLimit("memory limit", *memLimit); err != nil {
		return nil, err
	}
	if s.limits.IOBytesPerSec, err = parseLimit("io limit", *ioLimit); err != nil {
		return nil, err
	}

	if *strategy != "" {
		st, err := buffer.ParseStrategy(*strategy)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sharky.ErrInvalidConfig, err)
		}
		s.strategy = &st
	}

	return s, s.cfg.Validate()
}

func parseLimit(what, v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := conv.ParseSize(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", sharky.ErrInvalidConfig, what, err)
	}
	return n, nil
}
