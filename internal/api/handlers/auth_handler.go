package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"devtogether/internal/engine/access"
	"devtogether/internal/engine/moderation"
	"devtogether/internal/pkg/errors"
	"devtogether/internal/pkg/validator"
	"devtogether/internal/platform/audit"
	"devtogether/internal/platform/auth"
	"devtogether/internal/platform/models"
	"devtogether/internal/platform/repositories"
)

type AuthHandler struct {
	profileRepo *repositories.ProfileRepository
	tokenSvc    *auth.TokenService
	returnTo    *auth.ReturnToStore
	moderation  *moderation.Service
	audit       *audit.Logger
}

func NewAuthHandler(profileRepo *repositories.ProfileRepository, tokenSvc *auth.TokenService, returnTo *auth.ReturnToStore, moderationSvc *moderation.Service, auditLogger *audit.Logger) *AuthHandler {
	return &AuthHandler{
		profileRepo: profileRepo,
		tokenSvc:    tokenSvc,
		returnTo:    returnTo,
		moderation:  moderationSvc,
		audit:       auditLogger,
	}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // developer or organization
}

type AuthResponse struct {
	Profile      *models.Profile `json:"profile"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ReturnTo     string          `json:"return_to,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.ValidateFullName(req.FullName); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	// admins are promoted, never self-registered
	role := access.ParseRole(req.Role)
	if role != access.RoleDeveloper && role != access.RoleOrganization {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "role must be developer or organization", nil)
		return
	}

	existing, err := h.profileRepo.GetByEmail(email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Profile already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	now := time.Now().Unix()
	profile := &models.Profile{
		ID:           "usr_" + uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         string(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == access.RoleOrganization {
		profile.OrganizationStatus = string(access.OrgPending)
	}

	if err := h.profileRepo.Create(profile); err != nil {
		log.Error().Err(err).Msg("failed to create profile")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create profile", nil)
		return
	}

	h.audit.Log(r, profile.ID, audit.ActionSignup, "profile", profile.ID, map[string]interface{}{"role": profile.Role})
	if role == access.RoleOrganization {
		h.moderation.OrganizationSubmitted(profile)
	}

	h.writeTokens(w, r, http.StatusCreated, profile)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	profile, err := h.profileRepo.GetByEmail(email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if profile == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}
	if profile.DeletedAt != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Profile deleted", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	// Blocked and pending accounts still sign in; the access policy routes them.
	h.audit.Log(r, profile.ID, audit.ActionLogin, "profile", profile.ID, nil)
	h.writeTokens(w, r, http.StatusOK, profile)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	userID, err := h.tokenSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid refresh token", nil)
		return
	}

	profile, err := h.profileRepo.GetByID(userID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if profile == nil || profile.DeletedAt != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Profile not found", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(profile.ID, profile.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, r *http.Request, status int, profile *models.Profile) {
	accessToken, err := h.tokenSvc.GenerateAccessToken(profile.ID, profile.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(profile.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	errors.WriteJSON(w, status, AuthResponse{
		Profile:      profile,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ReturnTo:     h.returnTo.Pop(w, r),
	})
}
