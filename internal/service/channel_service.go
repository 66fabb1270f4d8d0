package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chirp/internal/cache"
	apperrors "chirp/internal/errors"
	"chirp/internal/model"
	"chirp/internal/repository"
)

const channelProfileCacheTTL = time.Minute

// ChannelService exposes the subscriber-aggregation view of a user and the
// subscribe/unsubscribe toggle.
type ChannelService interface {
	Profile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
}

type channelService struct {
	subs  repository.SubscriptionRepository
	cache *cache.Client
}

// NewChannelService creates a new channel service.
func NewChannelService(subs repository.SubscriptionRepository, cache *cache.Client) ChannelService {
	return &channelService{subs: subs, cache: cache}
}

func (s *channelService) cacheKey(username, viewerID string) string {
	return fmt.Sprintf("channel:%s:%s", username, viewerID)
}

// Profile returns the channel profile for a username as seen by the viewer.
// The aggregation result is cached briefly; isSubscribed depends on the
// viewer, so the key includes both.
func (s *channelService) Profile(ctx context.Context, username, viewerID string) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.Validation("username is required")
	}
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id")
	}

	key := s.cacheKey(username, viewerID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached model.ChannelProfile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	profile, err := s.subs.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("channel not found")
		}
		return nil, fmt.Errorf("channel profile: %w", err)
	}

	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, key, payload, channelProfileCacheTTL)
	}
	return profile, nil
}

// ToggleSubscription subscribes or unsubscribes the caller from a channel.
// Returns true when the caller is subscribed afterwards.
func (s *channelService) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	subscriber, err := primitive.ObjectIDFromHex(subscriberID)
	if err != nil {
		return false, apperrors.Validation("invalid user id")
	}
	channel, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return false, apperrors.Validation("invalid channel id")
	}
	if subscriber == channel {
		return false, apperrors.Validation("cannot subscribe to your own channel")
	}

	subscribed, err := s.subs.Toggle(ctx, subscriber, channel)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return subscribed, nil
}
