// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
RegisterRoutes attaches account endpoints to the root API router.

Endpoints:
  - POST /auth/register
  - POST /auth/login
  - GET  /auth/me
  - GET  /users/{id}
  - GET  /users (admin, paginated)
  - PUT  /users/{id}/role (admin)
*/
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Post("/auth/register", handler.Register)
	api.Post("/auth/login", handler.Login)

	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Get("/auth/me", handler.Me)
		member.Get("/users/{id}", handler.GetAccount)
	})

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/users", handler.ListAccounts)
		admin.Put("/users/{id}/role", handler.ChangeRole)
	})
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

/*
POST /api/v1/auth/register.

Response:
  - 201: Account
  - 400: Validation failed
  - 409: Email already registered
*/
func (handler *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, account)
}

/*
POST /api/v1/auth/login.

Response:
  - 200: Session (access token + account)
  - 401: Invalid login credentials
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

// Me handles GET /api/v1/auth/me.
func (handler *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.GetAccount(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

// ListAccounts handles GET /api/v1/users?page=&limit=.
func (handler *Handler) ListAccounts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.service.ListAccounts(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) GetAccount(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.GetAccount(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}

// ChangeRole handles PUT /api/v1/users/{id}/role.
func (handler *Handler) ChangeRole(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.ChangeRole(request.Context(), id, input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, account)
}
