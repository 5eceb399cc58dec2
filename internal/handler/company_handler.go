package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobboard/internal/service"
)

// CompanyHandler serves company reads.
type CompanyHandler struct {
	svc service.CompanyService
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(svc service.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

// GetCompany godoc
// @Summary Get company by id
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 200 {object} model.Company
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	company, err := h.svc.GetCompany(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}
