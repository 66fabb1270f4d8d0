package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "chirp/internal/errors"
	"chirp/internal/model"
)

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, subscriber, channel)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	args := m.Called(ctx, username, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChannelProfile), args.Error(1)
}

func TestChannelService_Profile(t *testing.T) {
	viewerID := primitive.NewObjectID()
	channelID := primitive.NewObjectID()

	t.Run("returns aggregated profile", func(t *testing.T) {
		mockRepo := new(MockSubscriptionRepository)
		mockRepo.On("ChannelProfile", mock.Anything, "alice", viewerID).Return(&model.ChannelProfile{
			ID:              channelID,
			Username:        "alice",
			SubscriberCount: 3,
			IsSubscribed:    true,
		}, nil)

		service := NewChannelService(mockRepo, nil)
		profile, err := service.Profile(context.Background(), "Alice", viewerID.Hex())

		assert.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, int64(3), profile.SubscriberCount)
		assert.True(t, profile.IsSubscribed)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown channel", func(t *testing.T) {
		mockRepo := new(MockSubscriptionRepository)
		mockRepo.On("ChannelProfile", mock.Anything, "nobody", viewerID).Return(nil, mongo.ErrNoDocuments)

		service := NewChannelService(mockRepo, nil)
		_, err := service.Profile(context.Background(), "nobody", viewerID.Hex())

		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperrors.From(err).StatusCode)
	})

	t.Run("blank username", func(t *testing.T) {
		service := NewChannelService(new(MockSubscriptionRepository), nil)
		_, err := service.Profile(context.Background(), "  ", viewerID.Hex())

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).StatusCode)
	})
}

func TestChannelService_ToggleSubscription(t *testing.T) {
	subscriberID := primitive.NewObjectID()
	channelID := primitive.NewObjectID()

	t.Run("subscribe then unsubscribe", func(t *testing.T) {
		mockRepo := new(MockSubscriptionRepository)
		mockRepo.On("Toggle", mock.Anything, subscriberID, channelID).Return(true, nil).Once()
		mockRepo.On("Toggle", mock.Anything, subscriberID, channelID).Return(false, nil).Once()

		service := NewChannelService(mockRepo, nil)

		subscribed, err := service.ToggleSubscription(context.Background(), subscriberID.Hex(), channelID.Hex())
		assert.NoError(t, err)
		assert.True(t, subscribed)

		subscribed, err = service.ToggleSubscription(context.Background(), subscriberID.Hex(), channelID.Hex())
		assert.NoError(t, err)
		assert.False(t, subscribed)

		mockRepo.AssertExpectations(t)
	})

	t.Run("own channel is rejected", func(t *testing.T) {
		mockRepo := new(MockSubscriptionRepository)

		service := NewChannelService(mockRepo, nil)
		_, err := service.ToggleSubscription(context.Background(), subscriberID.Hex(), subscriberID.Hex())

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).StatusCode)
		mockRepo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed channel id", func(t *testing.T) {
		service := NewChannelService(new(MockSubscriptionRepository), nil)
		_, err := service.ToggleSubscription(context.Background(), subscriberID.Hex(), "not-an-id")

		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).StatusCode)
	})
}
