package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	apperrors "chirp/internal/errors"
	"chirp/internal/media"
	"chirp/internal/model"
	"chirp/internal/service"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	uploader    media.Uploader
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, uploader media.Uploader) *AuthHandler {
	return &AuthHandler{authService: authService, uploader: uploader}
}

// RegisterRequest represents the multipart form fields of a registration
// request. The avatar and coverImage files travel alongside these fields.
type RegisterRequest struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Username string `form:"username" validate:"required,min=3,max=50"`
}

// LoginRequest represents a user login request. Username or email must be
// present.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request body. The token may also
// arrive as a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AuthResponse represents an authentication response. Tokens are also set as
// cookies.
type AuthResponse struct {
	User         *model.User `json:"user,omitempty"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param username formData string true "Username"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpError(apperrors.Validation(err.Error()))
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return httpError(apperrors.Validation("avatar is required"))
	}
	avatarURL, err := h.uploadFormFile(c, avatarFile)
	if err != nil {
		return httpError(apperrors.Internal("something went wrong while uploading avatar image"))
	}

	// A failed optional cover upload degrades to "no image".
	coverImageURL := ""
	if coverFile, err := c.FormFile("coverImage"); err == nil {
		if url, err := h.uploadFormFile(c, coverFile); err == nil {
			coverImageURL = url
		}
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Username:   req.Username,
		Avatar:     avatarURL,
		CoverImage: coverImageURL,
	})
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusCreated, user, "user created successfully")
}

// Login godoc
// @Summary Login with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpError(apperrors.Validation(err.Error()))
	}

	user, pair, err := h.authService.Login(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	setTokenCookie(c, accessTokenCookie, pair.AccessToken)
	setTokenCookie(c, refreshTokenCookie, pair.RefreshToken)

	return respond(c, http.StatusOK, AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout godoc
// @Summary Logout the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), user.ID.Hex(), accessTokenFromRequest(c)); err != nil {
		return httpError(err)
	}

	clearTokenCookie(c, accessTokenCookie)
	clearTokenCookie(c, refreshTokenCookie)

	return respond(c, http.StatusOK, nil, "user logged out successfully")
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (alternative to the cookie)"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return httpError(err)
	}

	setTokenCookie(c, accessTokenCookie, pair.AccessToken)
	setTokenCookie(c, refreshTokenCookie, pair.RefreshToken)

	return respond(c, http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed successfully")
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new passwords"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpError(apperrors.Validation(err.Error()))
	}

	if err := h.authService.ChangePassword(c.Request().Context(), user.ID.Hex(), req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, nil, "password changed successfully")
}

// Me godoc
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "current user fetched successfully")
}

// uploadFormFile spools a multipart file to a temp path and hands it to the
// media store, which removes the temp file when done.
func (h *AuthHandler) uploadFormFile(c echo.Context, file *multipart.FileHeader) (string, error) {
	localPath, err := saveTempUpload(file)
	if err != nil {
		return "", err
	}
	return h.uploader.Upload(c.Request().Context(), localPath)
}

func saveTempUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func setTokenCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
