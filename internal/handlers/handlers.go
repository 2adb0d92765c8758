// Package handlers implements the HTTP API. Every exported method on
// Handler is a gin handler; routes are wired in the router package.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/authz"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/realtime"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/validation"
)

// EventNotifier pushes event changes to connected clients.
type EventNotifier interface {
	EventStarting(ctx context.Context, eventID uint, msg string) error
	EventUpdated(ctx context.Context, eventID uint) error
}

type Config struct {
	Sessions       *auth.SessionManager
	Secret         string
	Enforcer       *authz.Enforcer
	Notifier       EventNotifier
	Hub            *realtime.Hub
	AllowedOrigins []string
	UploadDir      string
	MaxUploadBytes int64
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	sessions       *auth.SessionManager
	secret         string
	enforcer       *authz.Enforcer
	notifier       EventNotifier
	hub            *realtime.Hub
	upgrader       websocket.Upgrader
	uploadDir      string
	maxUploadBytes int64
	now            func() time.Time
}

func New(cfg Config) *Handler {
	h := &Handler{
		sessions:       cfg.Sessions,
		secret:         cfg.Secret,
		enforcer:       cfg.Enforcer,
		notifier:       cfg.Notifier,
		hub:            cfg.Hub,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		now:            cfg.Now,
	}

	if h.notifier == nil {
		h.notifier = noopNotifier{}
	}
	if h.now == nil {
		h.now = time.Now
	}

	origins := slices.Clone(cfg.AllowedOrigins)
	h.upgrader = websocket.Upgrader{
		// Non-browser clients send no Origin and are let through, as gorilla
		// does by default.
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		},
	}

	return h
}

type noopNotifier struct{}

func (noopNotifier) EventStarting(context.Context, uint, string) error { return nil }
func (noopNotifier) EventUpdated(context.Context, uint) error          { return nil }

// statusError carries an HTTP outcome out of a transaction closure. Returning
// one rolls the transaction back.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return e.message
}

func notFound(message string) error {
	return &statusError{status: http.StatusNotFound, message: message}
}

func badRequest(message string) error {
	return &statusError{status: http.StatusBadRequest, message: message}
}

// respondTxError writes the response for an error returned by a transaction.
func respondTxError(ctx *gin.Context, err error, what string) {
	var se *statusError
	if errors.As(err, &se) {
		ctx.JSON(se.status, gin.H{"error": se.message})
		return
	}
	internalError(ctx, err, what)
}

func internalError(ctx *gin.Context, err error, what string) {
	logging.Error().Err(err).
		Str("method", ctx.Request.Method).
		Str("path", ctx.Request.URL.Path).
		Msg(what)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.MsgInternalServerError})
}

// bindJSON decodes and validates the body into dst. It writes the 400
// response itself and returns false on failure.
func bindJSON(ctx *gin.Context, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		logging.Debug().Err(err).Str("path", ctx.Request.URL.Path).Msg("failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": types.MsgInvalidRequest})
		return false
	}

	if verr := validation.Struct(dst); verr != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return false
	}

	return true
}

// publish sends realtime notifications after a commit. Failures are logged;
// the HTTP outcome has already been decided.
func (h *Handler) publish(ctx *gin.Context, fn func(context.Context) error) {
	if err := fn(context.WithoutCancel(ctx.Request.Context())); err != nil {
		logging.Warn().Err(err).Str("path", ctx.Request.URL.Path).Msg("failed to publish realtime notification")
	}
}
