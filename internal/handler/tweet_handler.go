package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "chirp/internal/errors"
	"chirp/internal/service"
)

// TweetHandler handles tweet endpoints.
type TweetHandler struct {
	tweetService service.TweetService
}

// NewTweetHandler creates a new tweet handler.
func NewTweetHandler(tweetService service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

// TweetRequest represents a tweet create or update body.
type TweetRequest struct {
	Content string `json:"content" validate:"required"`
}

// Create godoc
// @Summary Create a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TweetRequest true "Tweet content"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /tweets [post]
func (h *TweetHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req TweetRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpError(apperrors.Validation(err.Error()))
	}

	tweet, err := h.tweetService.Create(c.Request().Context(), user.ID.Hex(), req.Content)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusCreated, tweet, "tweet added successfully")
}

// Update godoc
// @Summary Update a tweet's content
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tweetId path string true "Tweet id"
// @Param request body TweetRequest true "New content"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tweets/{tweetId} [patch]
func (h *TweetHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req TweetRequest
	if err := c.Bind(&req); err != nil {
		return httpError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return httpError(apperrors.Validation(err.Error()))
	}

	tweet, err := h.tweetService.Update(c.Request().Context(), user.ID.Hex(), c.Param("tweetId"), req.Content)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete godoc
// @Summary Delete a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param tweetId path string true "Tweet id"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tweets/{tweetId} [delete]
func (h *TweetHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.tweetService.Delete(c.Request().Context(), user.ID.Hex(), c.Param("tweetId")); err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, nil, "tweet deleted successfully")
}

// List godoc
// @Summary List the current user's tweets
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Router /tweets [get]
func (h *TweetHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tweets, err := h.tweetService.ListByOwner(c.Request().Context(), user.ID.Hex())
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, tweets, "tweets fetched successfully")
}
