package handlers

import (
	"net/http"

	"github.com/lavelada/velada-votes/middleware"
	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/services"
)

type AuthHandler struct {
	auth          *services.AuthService
	authenticator *middleware.Authenticator
}

func NewAuthHandler(auth *services.AuthService, authenticator *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth, authenticator: authenticator}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	token, err := h.authenticator.GenerateToken(user)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}

	successResponse(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := h.auth.SignIn(r.Context(), creds)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	token, err := h.authenticator.GenerateToken(user)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}
