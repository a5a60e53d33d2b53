package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Directory saves deliveries as files under Dir
type Directory struct {
	Dir    string
	Logger *slog.Logger

	lastPath string
}

// NewDirectory creates a deliverer that writes into dir
func NewDirectory(dir string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{Dir: dir, Logger: logger.With(slog.String("component", "directory_delivery"))}
}

// Deliver writes content to Dir/filename, replacing an existing file
func (d *Directory) Deliver(ctx context.Context, content []byte, mimeType, filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(d.Dir, filename)
	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", fullPath, err)
	}

	d.lastPath = fullPath
	d.Logger.InfoContext(ctx, "export saved",
		slog.String("full_path", fullPath),
		slog.String("mime_type", mimeType),
		slog.Int("bytes", len(content)))
	return nil
}

// LastPath returns the path of the most recent successful delivery
func (d *Directory) LastPath() string {
	return d.lastPath
}
