package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "chirp/internal/errors"
	"chirp/internal/model"
	"chirp/internal/repository"
)

// TweetService handles tweet operations, enforcing single-owner write
// authorization.
type TweetService interface {
	Create(ctx context.Context, ownerID, content string) (*model.Tweet, error)
	Update(ctx context.Context, ownerID, tweetID, content string) (*model.Tweet, error)
	Delete(ctx context.Context, ownerID, tweetID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Tweet, error)
}

type tweetService struct {
	tweets repository.TweetRepository
}

// NewTweetService creates a new tweet service.
func NewTweetService(tweets repository.TweetRepository) TweetService {
	return &tweetService{tweets: tweets}
}

// Create stores a new tweet owned by the given user.
func (s *tweetService) Create(ctx context.Context, ownerID, content string) (*model.Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("content is required")
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id")
	}

	tweet := &model.Tweet{Content: content, Owner: owner}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	return tweet, nil
}

// Update replaces the content of a tweet. Only the owner may update it.
func (s *tweetService) Update(ctx context.Context, ownerID, tweetID, content string) (*model.Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("content is required")
	}

	tweet, err := s.authorize(ctx, ownerID, tweetID)
	if err != nil {
		return nil, err
	}

	updated, err := s.tweets.UpdateContent(ctx, tweet.ID, content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("tweet not found")
		}
		return nil, fmt.Errorf("update tweet: %w", err)
	}
	return updated, nil
}

// Delete removes a tweet. Only the owner may delete it.
func (s *tweetService) Delete(ctx context.Context, ownerID, tweetID string) error {
	tweet, err := s.authorize(ctx, ownerID, tweetID)
	if err != nil {
		return err
	}

	if err := s.tweets.Delete(ctx, tweet.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("tweet not found")
		}
		return fmt.Errorf("delete tweet: %w", err)
	}
	return nil
}

// ListByOwner lists a user's tweets.
func (s *tweetService) ListByOwner(ctx context.Context, ownerID string) ([]model.Tweet, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id")
	}

	tweets, err := s.tweets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return tweets, nil
}

// authorize loads the tweet and checks that the caller owns it.
func (s *tweetService) authorize(ctx context.Context, ownerID, tweetID string) (*model.Tweet, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id")
	}
	id, err := primitive.ObjectIDFromHex(tweetID)
	if err != nil {
		return nil, apperrors.Validation("invalid tweet id")
	}

	tweet, err := s.tweets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("tweet not found")
		}
		return nil, fmt.Errorf("find tweet: %w", err)
	}

	if tweet.Owner != owner {
		return nil, apperrors.Forbidden("only the owner can modify the tweet")
	}
	return tweet, nil
}
