package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"chirp/internal/service"
)

// ChannelHandler handles channel profile and subscription endpoints.
type ChannelHandler struct {
	channelService service.ChannelService
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(channelService service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// Profile godoc
// @Summary Get a channel's subscriber-aggregation profile
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param username path string true "Channel username"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /channels/{username} [get]
func (h *ChannelHandler) Profile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.channelService.Profile(c.Request().Context(), c.Param("username"), user.ID.Hex())
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, profile, "channel fetched successfully")
}

// ToggleSubscription godoc
// @Summary Subscribe to or unsubscribe from a channel
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param channelId path string true "Channel user id"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /subscriptions/{channelId} [post]
func (h *ChannelHandler) ToggleSubscription(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	subscribed, err := h.channelService.ToggleSubscription(c.Request().Context(), user.ID.Hex(), c.Param("channelId"))
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, map[string]bool{"subscribed": subscribed}, "subscription toggled successfully")
}
