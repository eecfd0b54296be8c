package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maskchain/internal/directory"
	dErrors "maskchain/pkg/domain-errors"
)

// DirectoryService is the directory surface the handler exposes.
type DirectoryService interface {
	CreateOrganization(ctx context.Context, name, role string) (*directory.Organization, error)
	GetOrganization(ctx context.Context, id int64) (*directory.Organization, error)
	ListOrganizations(ctx context.Context, role string) ([]*directory.Organization, error)
	CreateUser(ctx context.Context, username string, orgID int64) (*directory.User, error)
	GetUser(ctx context.Context, id int64) (*directory.User, error)
	ListUsers(ctx context.Context) ([]*directory.User, error)
}

// DirectoryHandler serves the organization and user directory endpoints.
type DirectoryHandler struct {
	svc    DirectoryService
	logger *slog.Logger
}

func NewDirectoryHandler(svc DirectoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{svc: svc, logger: logger}
}

func (h *DirectoryHandler) Register(r chi.Router) {
	r.Post("/organizations", h.createOrganization)
	r.Get("/organizations", h.listOrganizations)
	r.Get("/organizations/{id}", h.getOrganization)
	r.Post("/users", h.createUser)
	r.Get("/users", h.listUsers)
	r.Get("/users/{id}", h.getUser)
}

func (h *DirectoryHandler) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	org, err := h.svc.CreateOrganization(r.Context(), req.Name, req.Role)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, org)
}

func (h *DirectoryHandler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.svc.ListOrganizations(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, orgs)
}

func (h *DirectoryHandler) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	org, err := h.svc.GetOrganization(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, org)
}

func (h *DirectoryHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username"`
		Organization int64  `json:"organization"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	user, err := h.svc.CreateUser(r.Context(), req.Username, req.Organization)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

func (h *DirectoryHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

func (h *DirectoryHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// pathID parses a numeric chi path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", name)
	}
	return id, nil
}
