package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobboard/internal/auth"
	"jobboard/internal/errors"
	"jobboard/internal/model"
	"jobboard/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the user creation payload. Role is accepted on the public
// route but only honoured on the admin route.
type CreateUserRequest struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8,max=72"`
	Name        string     `json:"name" validate:"omitempty,max=255"`
	Role        model.Role `json:"role" validate:"omitempty,oneof=USER ADMIN RECRUITER"`
	CompanyName string     `json:"companyName" validate:"omitempty,max=255"`
}

func (r CreateUserRequest) input() service.CreateUserInput {
	return service.CreateUserInput{
		Email:       r.Email,
		Password:    r.Password,
		Name:        r.Name,
		Role:        r.Role,
		CompanyName: r.CompanyName,
	}
}

// UpdateUserRequest is a partial patch; absent fields are left untouched.
type UpdateUserRequest struct {
	Email    *string     `json:"email" validate:"omitempty,email"`
	Password *string     `json:"password" validate:"omitempty,min=8,max=72"`
	Name     *string     `json:"name" validate:"omitempty,max=255"`
	Role     *model.Role `json:"role" validate:"omitempty,oneof=USER ADMIN RECRUITER"`
}

// CreateUser godoc
// @Summary Create user
// @Description Creates a USER-role account. When companyName is set a company owned by the new user is created in the same transaction.
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.svc.CreateUser(c.Request().Context(), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// CreateUserWithRole godoc
// @Summary Create user with role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) CreateUserWithRole(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.svc.CreateUserWithRole(c.Request().Context(), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Update user
// @Description Users may update themselves; admins may update anyone and change roles.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	claims, ok := auth.ClaimsFrom(c)
	if !ok || (claims.UserID != id && claims.Role != model.RoleAdmin) {
		return handleServiceError(c, errors.ErrForbidden)
	}
	if req.Role != nil && claims.Role != model.RoleAdmin {
		return handleServiceError(c, errors.ErrForbidden)
	}

	updated, err := h.svc.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	claims, ok := auth.ClaimsFrom(c)
	if !ok || (claims.UserID != id && claims.Role != model.RoleAdmin) {
		return handleServiceError(c, errors.ErrForbidden)
	}

	deleted, err := h.svc.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, deleted)
}
