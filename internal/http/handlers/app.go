package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// App bundles the gateway's dependencies: the contract core and the ledger
// backend it runs invocations against.
type App struct {
	Ledger ledger.Invoker
	Svc    *contract.Service
	Log    zerolog.Logger
}

// NewApp builds the handler container.
func NewApp(inv ledger.Invoker, svc *contract.Service, log zerolog.Logger) *App {
	return &App{Ledger: inv, Svc: svc, Log: log}
}

// caller extracts the caller identity for the invocation. The header is a
// stand-in for real authentication; a production deployment would put an
// authenticated principal here instead.
func (a *App) caller(r *http.Request) string {
	if id := r.Header.Get("X-Caller-Identity"); id != "" {
		return id
	}
	return "anonymous-client"
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": code, "message": message})
}

// domainError maps contract errors onto HTTP statuses. The wrapped message
// is surfaced verbatim; the contract guarantees it names the offending id
// and the expected-vs-actual state.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidMilestone),
		errors.Is(err, domain.ErrInvalidStatus):
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		a.error(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrDeadlineExceeded),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrNotVerified),
		errors.Is(err, domain.ErrAlreadyReleased),
		errors.Is(err, domain.ErrInsufficientFunds):
		a.error(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	default:
		a.Log.Error().Err(err).Msg("contract invocation failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
