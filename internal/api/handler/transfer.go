package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransferHandler struct {
	svc   *service.TransferService
	cards *service.CardService
}

func NewTransferHandler(svc *service.TransferService, cards *service.CardService) *TransferHandler {
	return &TransferHandler{svc: svc, cards: cards}
}

// MakeTransfer moves funds between two cards. The caller must own the
// source card (or be an admin), and the request must carry an
// Idempotency-Key header (enforced by middleware).
func (h *TransferHandler) MakeTransfer(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req struct {
		FromCardNumber string          `json:"from_card_number"`
		ToCardNumber   string          `json:"to_card_number"`
		Amount         decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if err := domain.ValidateCardNumber(req.FromCardNumber); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-number", "Invalid from_card_number")
		return
	}
	if err := domain.ValidateCardNumber(req.ToCardNumber); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-number", "Invalid to_card_number")
		return
	}

	if !isAdmin {
		source, err := h.cards.GetCardByNumber(r.Context(), req.FromCardNumber)
		if err != nil {
			if respondServiceError(w, r, err) {
				return
			}
			zap.L().Error("transfer source lookup failed", zap.Error(err))
			RespondError(w, r, http.StatusInternalServerError, "transfer/failed", "Transfer failed")
			return
		}
		if source.OwnerID != actorID {
			RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
			return
		}
	}

	tx, err := h.svc.Transfer(r.Context(), req.FromCardNumber, req.ToCardNumber, req.Amount)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("transfer failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "transfer/failed", "Transfer failed")
		return
	}

	RespondJSON(w, http.StatusCreated, models.TransactionView{
		ID:        tx.ID,
		FromCard:  domain.MaskCardNumber(req.FromCardNumber),
		ToCard:    domain.MaskCardNumber(req.ToCardNumber),
		Amount:    tx.Amount,
		Timestamp: tx.Timestamp,
	})
}
