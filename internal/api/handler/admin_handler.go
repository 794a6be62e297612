package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// AdminHandler handles system-wide administration endpoints.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// List handles GET /v1/admins.
//
// @Summary      List admin accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/admins [get]
func (h *AdminHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	admins, err := h.service.ListAdmins(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, admins)
}

// Delete handles DELETE /v1/admins/:id.
//
// @Summary      Delete an admin account and remove it from every project
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin user ID"
// @Success      204  "No Content"
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admins/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAdmin(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Projects handles GET /v1/admins/:id/projects.
//
// @Summary      List an admin's projects with task breakdowns
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin user ID"
// @Success      200  {array}   ports.AdminProjectDetail
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admins/{id}/projects [get]
func (h *AdminHandler) Projects(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	details, err := h.service.AdminProjects(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, details)
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Organization-wide aggregate statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.OrgStats
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	stats, err := h.service.OrgStats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
