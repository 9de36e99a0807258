package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"liftline/internal/config"
	apierrors "liftline/internal/errors"
	custommw "liftline/internal/middleware"
	"liftline/internal/services"
	"liftline/internal/validation"
	"liftline/pkg/contracts/domain"
)

// AnalysisHandler handles workbook analysis HTTP requests with RFC 7807 compliance
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	validator      *validation.FileValidator
	options        *custommw.ValidationMiddleware
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalysisServiceInterface, validator *validation.FileValidator, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		validator:      validator,
		options:        custommw.NewValidationMiddleware(logger),
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes with proper Chi patterns
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(custommw.ContentTypeValidator("multipart/form-data")).Post("/", h.Analyze)

	return r
}

// Analyze handles POST /api/v1/analysis with a multipart workbook upload
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "analysis request received",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int64("content_length", r.ContentLength),
	)

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile(config.UploadFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.logger.WarnContext(r.Context(), "upload exceeds size limit",
				slog.String("request_id", reqID),
				slog.Int64("limit", maxBytesErr.Limit),
			)
			h.errorHandler.HandleError(w, r, apierrors.ErrFileTooLarge)
			return
		}

		h.logger.WarnContext(r.Context(), "missing workbook upload",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(config.UploadFormField, "A workbook file upload is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header.Filename, header.Size, h.maxUploadBytes); err != nil {
		h.logger.WarnContext(r.Context(), "upload rejected",
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size),
			slog.String("error", err.Error()),
		)

		switch {
		case errors.Is(err, validation.ErrNotWorkbook):
			h.errorHandler.HandleError(w, r, apierrors.InvalidFileTypeError(header.Filename))
		case errors.Is(err, validation.ErrFileTooLarge):
			h.errorHandler.HandleError(w, r, apierrors.ErrFileTooLarge)
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(config.UploadFormField, err.Error()))
		}
		return
	}

	opts, err := h.parseOptions(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid analysis options",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), file, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analysis failed",
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)

		if errors.Is(err, services.ErrWorkbookUnreadable) {
			h.errorHandler.HandleError(w, r, apierrors.WorkbookUnreadableError(err))
			return
		}

		h.errorHandler.HandleError(w, r, apierrors.AnalysisError(err))
		return
	}

	if metrics := custommw.GetBusinessMetricsFromContext(r.Context()); metrics != nil {
		metrics.WorkbookBytesProcessed.Add(r.Context(), header.Size)
	}

	h.logger.InfoContext(r.Context(), "analysis succeeded",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.String("sheet", result.SheetName),
		slog.Int("rows", len(result.Rows)),
	)

	render.JSON(w, r, result)
}

// parseOptions extracts and validates analysis options from the request query
func (h *AnalysisHandler) parseOptions(r *http.Request) (domain.AnalysisOptions, error) {
	opts := domain.AnalysisOptions{}

	switch r.URL.Query().Get("debug") {
	case "1", "true":
		opts.IncludeDebug = true
	}

	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apierrors.ErrValidation("threshold", "threshold must be a valid integer")
		}
		opts.DelayThresholdMinutes = v
	}

	if err := h.options.ValidateStruct(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}
