package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "chirp/internal/errors"
	"chirp/internal/handler"
	"chirp/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	tweetHandler *handler.TweetHandler,
	channelHandler *handler.ChannelHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/users/register", authHandler.Register)
	api.POST("/users/login", authHandler.Login)
	api.POST("/users/refresh-token", authHandler.Refresh)

	// Secured routes: the access token comes from the cookie or the
	// Authorization header; the loaded user ends up in context under "user".
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  "user",
		TokenLookup: "cookie:accessToken,header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.VerifyAccess(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			he := apperrors.From(err)
			if he.StatusCode != http.StatusUnauthorized {
				he = apperrors.Unauthorized("unauthorized access")
			}
			return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
		},
	}))

	secured.POST("/users/logout", authHandler.Logout)
	secured.POST("/users/change-password", authHandler.ChangePassword)
	secured.GET("/users/me", authHandler.Me)

	secured.GET("/channels/:username", channelHandler.Profile)
	secured.POST("/subscriptions/:channelId", channelHandler.ToggleSubscription)

	secured.POST("/tweets", tweetHandler.Create)
	secured.GET("/tweets", tweetHandler.List)
	secured.PATCH("/tweets/:tweetId", tweetHandler.Update)
	secured.DELETE("/tweets/:tweetId", tweetHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
