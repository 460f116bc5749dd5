package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sink persists a report.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// Marshal encodes r as indented JSON.
func Marshal(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// FileSink writes the report to Path, creating parent directories.
type FileSink struct {
	Path string
}

// Write implements Sink.
func (s FileSink) Write(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", s.Path, err)
	}
	return nil
}

// String returns the destination for logs.
func (s FileSink) String() string {
	return "file:" + s.Path
}

// MultiSink writes to every sink, continuing past failures.
type MultiSink []Sink

// Write implements Sink. The returned error joins every sink failure.
func (m MultiSink) Write(ctx context.Context, r *Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
