package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lavelada/velada-votes/middleware"
	"github.com/lavelada/velada-votes/services"
	"github.com/lavelada/velada-votes/utils"
)

const maxAvatarBytes = 5 << 20 // 5MB

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers handles GET /users. Unauthenticated; pagination params are
// clamped, never rejected.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pagination := utils.ParsePaginationParams(r.URL.Query())

	users, total, err := h.users.ListUsers(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": utils.CalculatePagination(total, pagination.Limit, pagination.Offset),
	})
}

// GetUser handles GET /users/{userID}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UploadAvatar handles PUT /users/{userID}/avatar. Callers may only change
// their own avatar unless they carry the admin flag.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	userID := chi.URLParam(r, "userID")
	canModify := callerID == userID || middleware.IsAdminFromContext(r.Context())

	body := http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	defer body.Close()

	location, err := h.users.UploadAvatar(r.Context(), userID, canModify, r.Header.Get("Content-Type"), body)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"image": location})
}
