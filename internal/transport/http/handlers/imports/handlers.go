package importshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrimport/internal/auth"
	"hrimport/internal/domain/imports"
	"hrimport/internal/platform/email"
	"hrimport/internal/transport/http/api"
	"hrimport/internal/transport/http/middleware"
	"hrimport/internal/transport/http/shared"
)

const maxUploadMemoryBytes = 4 * 1024 * 1024

type Handler struct {
	Service     *imports.Service
	Idempotency *middleware.IdempotencyStore
	Email       email.Sender
	EmailFrom   string
}

func NewHandler(service *imports.Service, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Idempotency: idempotency}
}

// WithEmail enables outcome notification mails.
func (h *Handler) WithEmail(sender email.Sender, from string) *Handler {
	h.Email = sender
	h.EmailFrom = from
	return h
}

// RegisterRoutes mounts the import endpoints. Everything here is gated to the
// HR role; template download included, since templates leak the expected
// column set.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleHR))
		r.Get("/templates/{mode}", h.handleTemplate)
		r.Post("/", h.handleUpload)
		r.Get("/", h.handleList)
		r.Get("/{jobID}", h.handleGet)
		r.Get("/{jobID}/report.pdf", h.handleReport)
		r.Post("/{jobID}/confirm", h.handleConfirm)
		r.Delete("/{jobID}", h.handleDismiss)
	})
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	mode := imports.Mode(chi.URLParam(r, "mode"))

	filename, contents, err := imports.Template(mode)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "unknown template mode", requestID)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(contents); err != nil {
		slog.Warn("template write failed", "error", err)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "expected a multipart upload", requestID)
		return
	}
	mode := imports.Mode(r.FormValue("mode"))
	if !mode.Valid() {
		api.Fail(w, http.StatusBadRequest, "bad_request", `mode must be "new" or "existing"`, requestID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", `missing "file" form field`, requestID)
		return
	}
	defer file.Close()
	contents, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "could not read uploaded file", requestID)
		return
	}

	preview, err := h.Service.Open(r.Context(), user.UserID, requestID, shared.ClientIP(r), mode, header.Filename, contents)
	if err != nil {
		if errors.Is(err, imports.ErrNoData) {
			api.Fail(w, http.StatusUnprocessableEntity, "no_data", "the uploaded file contains no data", requestID)
			return
		}
		slog.Error("import open failed", "error", err, "filename", header.Filename)
		api.Fail(w, http.StatusBadRequest, "bad_request", err.Error(), requestID)
		return
	}
	api.Created(w, preview, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	jobs, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		slog.Error("import list failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, jobs, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	job, err := h.Service.Get(r.Context(), user.UserID, chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, imports.ErrJobNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "import job not found", requestID)
			return
		}
		slog.Error("import get failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, job, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	job, err := h.Service.Get(r.Context(), user.UserID, chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, imports.ErrJobNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "import job not found", requestID)
			return
		}
		slog.Error("import report lookup failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}

	pdf, err := imports.RenderReport(job)
	if err != nil {
		slog.Error("import report render failed", "error", err, "jobId", job.ID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "import_"+job.ID+".pdf"))
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("report write failed", "error", err)
	}
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	jobID := chi.URLParam(r, "jobID")

	const endpoint = "imports.confirm"
	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash([]byte(jobID))
	if idemKey != "" {
		stored, replay, err := h.Idempotency.Check(r.Context(), user.UserID, endpoint, idemKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key already used for a different request", requestID)
				return
			}
			slog.Error("idempotency check failed", "error", err)
			api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
			return
		}
		if replay {
			var outcome imports.Outcome
			if err := json.Unmarshal(stored, &outcome); err == nil {
				api.Success(w, outcome, requestID)
				return
			}
		}
	}

	outcome, err := h.Service.Confirm(r.Context(), user.UserID, requestID, shared.ClientIP(r), jobID)
	if err != nil {
		switch {
		case errors.Is(err, imports.ErrSessionNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "import session not found or expired", requestID)
		case errors.Is(err, imports.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_state", "import is not awaiting confirmation", requestID)
		default:
			slog.Error("import confirm failed", "error", err, "jobId", jobID)
			api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		}
		return
	}

	if idemKey != "" {
		payload, err := json.Marshal(outcome)
		if err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, endpoint, idemKey, requestHash, payload); err != nil {
				slog.Warn("idempotency save failed", "error", err)
			}
		}
	}
	h.notifyOutcome(user.Email, jobID, outcome)
	api.Success(w, outcome, requestID)
}

// notifyOutcome mails the submission summary to the user who confirmed the
// import. Delivery is best-effort and never blocks the response.
func (h *Handler) notifyOutcome(to, jobID string, outcome *imports.Outcome) {
	if h.Email == nil {
		return
	}
	subject := fmt.Sprintf("Import %s finished: %d succeeded, %d failed", jobID, outcome.SuccessCount, outcome.FailureCount)
	body := subject
	for _, message := range outcome.FailureMessages {
		body += "\n- " + message
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Email.Send(ctx, h.EmailFrom, to, subject, body); err != nil {
			slog.Warn("outcome mail failed", "error", err, "jobId", jobID)
		}
	}()
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	jobID := chi.URLParam(r, "jobID")

	if err := h.Service.Dismiss(r.Context(), user.UserID, requestID, shared.ClientIP(r), jobID); err != nil {
		if errors.Is(err, imports.ErrSessionNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "import session not found or expired", requestID)
			return
		}
		slog.Error("import dismiss failed", "error", err, "jobId", jobID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "dismissed"}, requestID)
}
