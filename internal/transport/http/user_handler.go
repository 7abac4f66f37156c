package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	g := e.Group("/users", RequireAuth(auth))
	g.GET("", handler.list)
	g.GET("/:userId", handler.get)
}

func (h *UserHandler) list(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	accounts, err := h.users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}

	summaries := make([]util.Envelope, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, util.Envelope{
			"id":       account.ID,
			"username": account.Username,
		})
	}
	return c.JSON(http.StatusOK, util.Envelope{"users": summaries})
}

func (h *UserHandler) get(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return nil
	}

	account, err := h.users.Get(c.Request().Context(), user.ID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": account})
}
