package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chirp/internal/model"
)

// TweetRepository defines tweet persistence operations.
type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*model.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Tweet, error)
}

type tweetRepository struct {
	col *mongo.Collection
}

// NewTweetRepository builds a MongoDB-backed repository.
func NewTweetRepository(db *mongo.Database) TweetRepository {
	return &tweetRepository{col: db.Collection("tweets")}
}

// Create inserts a new tweet and fills in its generated id.
func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	now := time.Now()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, tweet)
	if err != nil {
		return err
	}
	tweet.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a tweet by id.
func (r *tweetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// UpdateContent atomically replaces the content and returns the updated tweet.
func (r *tweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*model.Tweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}

	var tweet model.Tweet
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// Delete removes a tweet by id.
func (r *tweetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByOwner lists a user's tweets, newest first.
func (r *tweetRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Tweet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tweets []model.Tweet
	if err := cur.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}
