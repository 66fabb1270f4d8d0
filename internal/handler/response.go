package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "chirp/internal/errors"
	"chirp/internal/model"
)

// Response is the success envelope returned by every endpoint.
type Response struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Response{StatusCode: status, Data: data, Message: message})
}

// httpError converts service errors to echo HTTP errors carrying the
// standard error body.
func httpError(err error) error {
	he := apperrors.From(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// currentUser returns the authenticated user placed in context by the auth
// middleware.
func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get("user").(*model.User)
	if !ok {
		return nil, httpError(apperrors.Unauthorized("unauthorized access"))
	}
	return user, nil
}

// accessTokenFromRequest extracts the raw access token from the cookie or
// the Authorization header, mirroring the auth middleware's lookup order.
func accessTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
