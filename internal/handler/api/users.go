package api

import (
	"log/slog"
	"net/http"

	"jobdesk/internal/store"
)

// ListUsers handles GET /users. Admin only. Password hashes never leave
// the storage layer.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("list users", "error", err)
		WriteInternalError(w, "Failed to list users")
		return
	}

	resp := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, profileFromUser(u))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// DeleteUser handles DELETE /users/{id}. Admin only. Admin accounts cannot
// be deleted. The user's applications are removed with the account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if user.IsAdmin() {
		WriteForbidden(w, "Admin accounts cannot be deleted")
		return
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		slog.Error("delete user", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to delete user")
		return
	}

	slog.Info("user deleted", "user_id", user.ID, "username", user.Username)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
