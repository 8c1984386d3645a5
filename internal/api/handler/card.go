package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CardHandler struct {
	svc       *service.CardService
	lifecycle *service.LifecycleService
}

func NewCardHandler(svc *service.CardService, lifecycle *service.LifecycleService) *CardHandler {
	return &CardHandler{svc: svc, lifecycle: lifecycle}
}

// GetBalance returns the card's current balance to its owner or an admin.
func (h *CardHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	card, err := h.svc.GetCard(r.Context(), cardID)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("card lookup failed", zap.Error(err), zap.String("card_id", cardID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/read-failed", "Failed to get card")
		return
	}
	if !isAdmin && card.OwnerID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), cardID)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("get balance failed", zap.Error(err), zap.String("card_id", cardID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/balance-read-failed", "Failed to get balance")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{
		"card_id": cardID.String(),
		"balance": domain.FormatAmount(balance),
	})
}

// ChangeStatus applies a manual ACTIVE/BLOCKED transition. Admin only
// (enforced by route middleware).
func (h *CardHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	target, err := domain.ParseCardStatus(req.Status)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "card/invalid-status", "status must be ACTIVE or BLOCKED")
		return
	}

	card, err := h.lifecycle.ChangeStatus(r.Context(), cardID, target)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("status change failed", zap.Error(err), zap.String("card_id", cardID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/status-change-failed", "Failed to change status")
		return
	}

	RespondJSON(w, http.StatusOK, cardView(card))
}

// ListCards returns the caller's cards as masked projections.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	filter := models.CardFilter{SearchTerm: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseCardStatus(raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "card/invalid-status", "unknown status filter")
			return
		}
		filter.Status = &status
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	items, total, err := h.svc.ListUserCards(r.Context(), actorID, filter, models.Page{Number: page, Size: pageSize})
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("list cards failed", zap.Error(err), zap.String("owner_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/list-failed", "Failed to list cards")
		return
	}
	if items == nil {
		items = []models.CardListItem{}
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"cards": items,
		"total": total,
	})
}

// CreateCard issues a card. Admin only.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID        string          `json:"owner_id"`
		CardNumber     string          `json:"card_number"`
		ExpirationDate string          `json:"expiration_date"` // YYYY-MM-DD
		Balance        decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-owner-id", "Invalid owner_id")
		return
	}
	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-expiration", "expiration_date must be YYYY-MM-DD")
		return
	}
	if err := domain.ValidateCardNumber(req.CardNumber); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-number", err.Error())
		return
	}

	card, err := h.svc.CreateCard(r.Context(), ownerID, req.CardNumber, expiration, req.Balance)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("create card failed", zap.Error(err), zap.String("owner_id", ownerID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/create-failed", "Failed to create card")
		return
	}

	RespondJSON(w, http.StatusCreated, cardView(card))
}

// DeleteCard removes an unreferenced card. Admin only.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCard(r.Context(), cardID); err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("delete card failed", zap.Error(err), zap.String("card_id", cardID.String()))
		RespondError(w, r, http.StatusInternalServerError, "card/delete-failed", "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func cardIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-card-id", "Invalid card ID")
		return uuid.Nil, false
	}
	return cardID, true
}

type cardResponse struct {
	ID             uuid.UUID       `json:"id"`
	MaskedNumber   string          `json:"masked_number"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	ExpirationDate string          `json:"expiration_date"`
	Status         string          `json:"status"`
	Balance        decimal.Decimal `json:"balance"`
}

func cardView(card *models.Card) cardResponse {
	return cardResponse{
		ID:             card.ID,
		MaskedNumber:   domain.MaskCardNumber(card.CardNumber),
		OwnerID:        card.OwnerID,
		ExpirationDate: card.ExpirationDate.Format("2006-01-02"),
		Status:         card.Status.String(),
		Balance:        card.Balance,
	}
}
