package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"leadexport/internal/delivery"
	apierrors "leadexport/internal/errors"
	"leadexport/internal/exporter"
	"leadexport/internal/middleware"
	"leadexport/internal/services"
	api "leadexport/pkg/contracts/api/v1"
	"leadexport/pkg/contracts/domain"
)

// ExportServiceInterface is the service behind the export endpoint
type ExportServiceInterface interface {
	Export(ctx context.Context, d exporter.Deliverer, req api.ExportRequest) (services.ExportResult, error)
}

var exportFormats = []string{string(domain.ExportFormatCSV), string(domain.ExportFormatXLSX)}

// ExportHandler turns posted capture records into a file download
type ExportHandler struct {
	service      ExportServiceInterface
	query        *middleware.QueryParamValidator
	maxBodyBytes int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportServiceInterface, maxBodyBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	logger = logger.With(slog.String("handler", "export"))
	return &ExportHandler{
		service:      service,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the capture routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
	r.Use(middleware.BodyLimit(h.maxBodyBytes, h.errorHandler))

	r.Post("/export", h.Export)
	return r
}

// Export handles POST /api/captures/export. A ?format= query parameter
// overrides the format in the body. With no records the answer is 204.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLarge("request body", maxErr.Limit, r.ContentLength))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	format, ok := h.query.ValidateEnum(w, r, "format", exportFormats, string(req.Format))
	if !ok {
		return
	}
	req.Format = domain.ExportFormat(format)

	d := delivery.NewHTTP(w, h.logger)
	res, err := h.service.Export(r.Context(), d, req)
	if err != nil {
		if d.Delivered() {
			// Headers are gone; the client sees a truncated body.
			h.logger.ErrorContext(r.Context(), "export failed after response started",
				slog.String("error", err.Error()))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if !res.Delivered {
		w.WriteHeader(http.StatusNoContent)
	}
}
