package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"field-backend/internal/middleware"
	"field-backend/internal/models"
	"field-backend/internal/services"
	"field-backend/pkg/utils"
)

type AuthHandler struct {
	Users *services.UserService
	TOTP  *services.TOTPService
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totp}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Users.Signup(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// VerifyLogin completes a 2FA login: temp token plus authenticator code
// in, full session token out.
func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempToken string `json:"temp_token"`
		Code      string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims, err := h.Users.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "invalid or expired temp token")
		return
	}
	if err := h.TOTP.VerifyCode(r.Context(), claims.UserID, req.Code); err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	resp, err := h.Users.IssueSessionToken(r.Context(), claims.UserID)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	user, err := h.Users.Users.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "user not found")
		return
	}

	setup, err := h.TOTP.GenerateSetup(r.Context(), user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, setup)
}

func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.TOTP.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

func (h *AuthHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.TOTP.Disable(r.Context(), userID); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": false})
}

// ListUsers is admin-only, for the team management screen.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	utils.JSON(w, http.StatusOK, users)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	user, err := h.Users.Users.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "user not found")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
