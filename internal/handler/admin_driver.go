package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/config"
	"github.com/iliyamo/journey-booking/internal/model"
	"github.com/iliyamo/journey-booking/internal/repository"
)

// AdminDriverHandler manages driver accounts. Drivers cannot
// self-register; an administrator creates and removes them.
type AdminDriverHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Journeys *repository.JourneyRepo
}

func NewAdminDriverHandler(cfg config.Config, users *repository.UserRepo, journeys *repository.JourneyRepo) *AdminDriverHandler {
	return &AdminDriverHandler{Cfg: cfg, Users: users, Journeys: journeys}
}

type createDriverReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateDriver provisions a driver account.
func (h *AdminDriverHandler) CreateDriver(c echo.Context) error {
	var req createDriverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, model.RoleDriver, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create driver failed"})
	}
	return c.JSON(http.StatusCreated, userPart{ID: uid, Email: req.Email, Name: req.Name, Role: model.RoleDriver})
}

// ListDrivers returns all driver accounts.
func (h *AdminDriverHandler) ListDrivers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	drivers, err := h.Users.ListByRole(ctx, model.RoleDriver)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, userPart{ID: d.ID, Email: d.Email, Name: d.Name, Role: d.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"drivers": out})
}

// DeleteDriver removes a driver account after unassigning it from all
// journeys, so no journey keeps a dangling driver reference.
func (h *AdminDriverHandler) DeleteDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid driver id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Role != model.RoleDriver {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not a driver"})
	}

	if err := h.Journeys.UnassignDriverEverywhere(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unassign driver failed"})
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete driver failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "driver deleted"})
}
