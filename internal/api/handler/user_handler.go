package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/middleware"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
)

// UserHandler exposes the admin-only account management surface: listing
// accounts, changing roles, and soft (de)activation. Accounts are never
// physically deleted.
type UserHandler struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserRepository, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type updateRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=user admin superadmin"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// List returns all accounts, password hashes excluded by the repository.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole changes an account's role. Outstanding tokens keep the role
// snapshotted at issuance; the change takes effect on the user's next
// login. Granting or revoking superadmin requires a superadmin actor.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, ok := middleware.Identity(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	ctx := c.Request().Context()
	target, err := h.users.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	if (req.Role == domain.RoleSuperAdmin || target.Role == domain.RoleSuperAdmin) &&
		actor.Role != domain.RoleSuperAdmin {
		h.log.Warn().
			Str("actor_id", actor.ID).
			Str("target_id", target.ID).
			Str("requested_role", string(req.Role)).
			Msg("superadmin role change denied")
		return domain.ErrForbidden
	}

	if err := h.users.UpdateRole(ctx, target.ID, req.Role); err != nil {
		return err
	}

	h.log.Info().
		Str("actor_id", actor.ID).
		Str("target_id", target.ID).
		Str("role", string(req.Role)).
		Msg("user role updated")
	return c.JSON(http.StatusOK, map[string]string{"message": "role updated"})
}

// SetActive toggles the account's soft-deactivation flag. A deactivated
// account fails authentication with 403 account_deactivated even while its
// tokens remain cryptographically valid.
//
// @Summary      Activate or deactivate a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setActiveRequest  true  "Active flag"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/active [patch]
func (h *UserHandler) SetActive(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, ok := middleware.Identity(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if actor.ID == c.Param("id") && !*req.Active {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot deactivate your own account")
	}

	if err := h.users.SetActive(c.Request().Context(), c.Param("id"), *req.Active); err != nil {
		return err
	}

	h.log.Info().
		Str("actor_id", actor.ID).
		Str("target_id", c.Param("id")).
		Bool("active", *req.Active).
		Msg("user active flag updated")
	return c.JSON(http.StatusOK, map[string]string{"message": "account updated"})
}
