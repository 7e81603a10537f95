package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/auth/v2/token"

	"cinelog/models"
	userssvc "cinelog/services/users"
)

// userDirectory resolves authenticated usernames to stored accounts.
type userDirectory interface {
	Get(ctx context.Context, username string) (*models.User, error)
}

var _ userDirectory = (*userssvc.Service)(nil)

// AuthHandler reports the session state of the caller.
type AuthHandler struct {
	Users         userDirectory
	AdminUsername string
}

func NewAuthHandler(users userDirectory, adminUsername string) *AuthHandler {
	return &AuthHandler{Users: users, AdminUsername: adminUsername}
}

// Status answers whether the request carries a valid session. It is mounted
// outside the auth guard so the login page can probe it.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, err := token.GetUserInfo(r)
	if err != nil || user.Name == "" {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      user.Name,
		"is_admin":      user.Name == h.AdminUsername,
	})
}

// requestUser resolves the authenticated account behind a guarded request.
func requestUser(r *http.Request, users userDirectory) (*models.User, error) {
	info, err := token.GetUserInfo(r)
	if err != nil {
		return nil, err
	}
	return users.Get(r.Context(), info.Name)
}
