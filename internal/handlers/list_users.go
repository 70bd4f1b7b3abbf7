package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/models"
	"github.com/sbilibin2017/audio-vault/internal/services"
)

// UserLister lists every account.
type UserLister interface {
	List(ctx context.Context, requester models.Identity) ([]models.User, error)
}

// UserResponse holds the public fields of a user.
// swagger:model UserResponse
type UserResponse struct {
	// default: 1
	ID int64 `json:"id"`
	// default: alice
	Username string `json:"username"`
	// default: user
	Role models.Role `json:"role"`
}

// ListUsersResponse wraps the user list.
// swagger:model ListUsersResponse
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// NewListUsersHandler returns an HTTP handler listing all users.
// @Summary List users
// @Description Returns every account. Admin only.
// @Tags users
// @Produce json
// @Success 200 {object} handlers.ListUsersResponse "Users"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: Admin access required"
// @Failure 404 {object} handlers.ErrorResponse "No users found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /user [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		users, err := svc.List(r.Context(), identity)
		if err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, services.ErrNoUsersFound):
				writeError(w, http.StatusNotFound, "No users found")
			default:
				writeInternalError(w, "Internal server error", err)
			}
			return
		}

		resp := ListUsersResponse{Users: make([]UserResponse, 0, len(users))}
		for _, u := range users {
			resp.Users = append(resp.Users, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
