package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"payments-engine/internal/config"
	apperrors "payments-engine/internal/errors"
	"payments-engine/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: payments-engine [-log-level level] <input.csv>")
		return exitCode(err)
	}

	// The final table goes to stdout, so all diagnostics go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	input, err := os.Open(cfg.InputPath)
	if err != nil {
		logger.Error("cannot open input file", "path", cfg.InputPath, "error", err)
		return 1
	}
	defer input.Close()

	engine := service.NewEngine(logger)
	if _, err := engine.Run(context.Background(), input, os.Stdout); err != nil {
		logger.Error("run failed", "error", err)
		return exitCode(err)
	}

	return 0
}

func exitCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return 1
}
