package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayo6706/bankcards/internal/api/middleware"
	"github.com/ayo6706/bankcards/internal/api/problem"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/google/uuid"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

func requestActor(r *http.Request) (uuid.UUID, bool, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, false, errors.New("missing user in auth context")
	}

	actorID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false, errors.New("invalid user_id in auth context")
	}

	return actorID, middleware.UserRoleFromContext(r.Context()) == "ADMIN", nil
}

// respondServiceError maps the service error taxonomy onto transport
// statuses. Returns false when the error is not a known kind.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case errors.Is(err, models.ErrCardNotFound):
		RespondError(w, r, http.StatusNotFound, "card/not-found", err.Error())
	case errors.Is(err, models.ErrUserNotFound):
		RespondError(w, r, http.StatusNotFound, "user/not-found", err.Error())
	case errors.Is(err, models.ErrConflict):
		RespondError(w, r, http.StatusConflict, "card/conflict", err.Error())
	case errors.Is(err, models.ErrInvalidAmount):
		RespondError(w, r, http.StatusBadRequest, "transfer/invalid-amount", err.Error())
	case errors.Is(err, models.ErrInvalidCardNumber):
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-number", err.Error())
	case errors.Is(err, models.ErrSameCardTransfer):
		RespondError(w, r, http.StatusBadRequest, "transfer/same-card", err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		RespondError(w, r, http.StatusBadRequest, "card/invalid-transition", err.Error())
	case errors.Is(err, models.ErrNoOp):
		RespondError(w, r, http.StatusConflict, "card/status-unchanged", err.Error())
	case errors.Is(err, models.ErrCardNotUsable):
		RespondError(w, r, http.StatusUnprocessableEntity, "card/not-usable", err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		RespondError(w, r, http.StatusUnprocessableEntity, "transfer/insufficient-funds", err.Error())
	case errors.Is(err, models.ErrStoreUnavailable):
		RespondError(w, r, http.StatusServiceUnavailable, "store/unavailable", "store temporarily unavailable")
	default:
		return false
	}
	return true
}
