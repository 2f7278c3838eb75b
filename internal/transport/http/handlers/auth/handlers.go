package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pquerna/otp/totp"

	"hrimport/internal/auth"
	"hrimport/internal/domain/users"
	"hrimport/internal/transport/http/api"
	"hrimport/internal/transport/http/middleware"
	"hrimport/internal/transport/http/shared"
)

// UserStore is the subset of the users store login needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	SetTOTPSecret(ctx context.Context, id, secret string) error
}

// Auditor records authentication events.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, details any) error
}

type Handler struct {
	Users     UserStore
	Audit     Auditor
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

func NewHandler(usersStore UserStore, auditSvc Auditor, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		Users:     usersStore,
		Audit:     auditSvc,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
		Issuer:    "hrimport",
	}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// RegisterProtectedRoutes mounts endpoints that require a valid session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/totp/enroll", h.handleEnrollTOTP)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

func (req loginRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if err := req.Validate(); err != nil {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_failed", "invalid login request", err, requestID)
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
			return
		}
		slog.Error("login lookup failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if user.TOTPSecret != nil && *user.TOTPSecret != "" {
		if req.OTP == "" {
			api.Fail(w, http.StatusUnauthorized, "otp_required", "one-time code required", requestID)
			return
		}
		if !totp.Validate(req.OTP, *user.TOTPSecret) {
			api.Fail(w, http.StatusUnauthorized, "invalid_otp", "invalid one-time code", requestID)
			return
		}
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, h.TokenTTL)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), user.ID, "auth.login", "user", user.ID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit record failed", "action", "auth.login", "error", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	}, requestID)
}

func (h *Handler) handleEnrollTOTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: h.Issuer, AccountName: user.Email})
	if err != nil {
		slog.Error("totp generation failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}
	if err := h.Users.SetTOTPSecret(r.Context(), user.UserID, key.Secret()); err != nil {
		slog.Error("totp enroll failed", "error", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "auth.totp_enroll", "user", user.UserID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit record failed", "action", "auth.totp_enroll", "error", err)
	}

	api.Success(w, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
	}, requestID)
}
