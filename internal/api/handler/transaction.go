package handler

import (
	"net/http"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/service"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	svc *service.TransactionService
}

func NewTransactionHandler(svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// ListForCard returns the transaction history of a card identified by its
// full number. Only the card's owner or an admin may query it; every view
// carries masked card numbers only.
func (h *TransactionHandler) ListForCard(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	cardNumber := r.URL.Query().Get("card_number")
	if err := domain.ValidateCardNumber(cardNumber); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-number", "card_number query parameter is required and must be 16 digits")
		return
	}

	card, views, err := h.svc.ListForCard(r.Context(), cardNumber)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("list transactions failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "transaction/list-failed", "Failed to list transactions")
		return
	}
	if !isAdmin && card.OwnerID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}
	if views == nil {
		views = []models.TransactionView{}
	}

	RespondJSON(w, http.StatusOK, views)
}
