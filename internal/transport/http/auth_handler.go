package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}
	e.POST("/auth/sign-up", handler.signUp)
	e.POST("/auth/sign-in", handler.signIn)
	e.POST("/auth/google", handler.signInWithGoogle)
}

func (h *AuthHandler) signUp(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	session, err := h.auth.SignUp(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionResponse(session))
}

func (h *AuthHandler) signIn(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	session, err := h.auth.SignIn(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *AuthHandler) signInWithGoogle(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	session, err := h.auth.SignInWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func sessionResponse(session *service.AuthSession) util.Envelope {
	return util.Envelope{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"user": util.Envelope{
			"id":       session.User.ID,
			"username": session.User.Username,
		},
	}
}
