package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ayo6706/bankcards/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser registers a user. Admin only.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-fields", "username and password are required")
		return
	}
	role := req.Role
	if role != "ADMIN" {
		role = "USER"
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		if respondServiceError(w, r, err) {
			return
		}
		zap.L().Error("create user failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "user/create-failed", "Failed to create user")
		return
	}

	RespondJSON(w, http.StatusCreated, user)
}
