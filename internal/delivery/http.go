package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
)

// HTTP delivers content as an attachment on an HTTP response
type HTTP struct {
	w         http.ResponseWriter
	logger    *slog.Logger
	delivered bool
	filename  string
}

// NewHTTP creates an HTTP deliverer writing to w
func NewHTTP(w http.ResponseWriter, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{w: w, logger: logger.With(slog.String("component", "http_delivery"))}
}

// Deliver writes the download headers and the body. It may be called once.
func (h *HTTP) Deliver(ctx context.Context, content []byte, mimeType, filename string) error {
	if h.delivered {
		return fmt.Errorf("response already delivered as %s", h.filename)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		return fmt.Errorf("invalid download filename %q", filename)
	}

	header := h.w.Header()
	header.Set("Content-Type", mimeType)
	header.Set("Content-Disposition", disposition)
	header.Set("Content-Length", strconv.Itoa(len(content)))
	header.Set("Cache-Control", "no-store")
	header.Set("X-Content-Type-Options", "nosniff")
	h.w.WriteHeader(http.StatusOK)

	h.delivered = true
	h.filename = filename

	if _, err := h.w.Write(content); err != nil {
		return fmt.Errorf("failed to write download body: %w", err)
	}

	h.logger.DebugContext(ctx, "download sent",
		slog.String("filename", filename),
		slog.Int("bytes", len(content)))
	return nil
}

// Delivered reports whether a file was sent
func (h *HTTP) Delivered() bool {
	return h.delivered
}
