package handler

import (
	"net/http"

	"github.com/msomdec/store-rating/internal/service"
)

// AdminHandler serves the system administrator's user management API.
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// HandleListUsers lists users with their store and rating counts.
// GET /api/admin/users?search=&role=&sortBy=&sortDirection=
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), CallerFromContext(r.Context()), listQuery(r))
	if err != nil {
		writeServiceError(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserSummaryDTOs(users),
	})
}

// HandleCreateUser creates a user with any role.
// POST /api/admin/users
// Request:  {"name":"...","email":"...","password":"...","address":"...","role":"..."}
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.NewUser
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.CreateUser(r.Context(), CallerFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleDashboard returns platform totals and recent activity.
// GET /api/admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.users.Dashboard(r.Context(), CallerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, "admin dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalUsers":   d.TotalUsers,
		"totalStores":  d.TotalStores,
		"totalRatings": d.TotalRatings,
		"recentUsers":  toUserDTOs(d.RecentUsers),
		"recentStores": toStoreViewDTOs(d.RecentStores),
	})
}

func listQuery(r *http.Request) service.ListQuery {
	q := r.URL.Query()
	return service.ListQuery{
		Search:        q.Get("search"),
		Role:          q.Get("role"),
		SortBy:        q.Get("sortBy"),
		SortDirection: q.Get("sortDirection"),
	}
}
