package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chirp/internal/model"
)

// SubscriptionRepository defines subscription persistence and the channel
// aggregation view.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error)
}

type subscriptionRepository struct {
	subs  *mongo.Collection
	users *mongo.Collection
}

// NewSubscriptionRepository builds a MongoDB-backed repository.
func NewSubscriptionRepository(db *mongo.Database) SubscriptionRepository {
	return &subscriptionRepository{
		subs:  db.Collection("subscriptions"),
		users: db.Collection("users"),
	}
}

// Toggle subscribes the user to the channel, or unsubscribes if already
// subscribed. Returns true when the user is subscribed afterwards.
func (r *subscriptionRepository) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	filter := bson.M{"subscriber": subscriber, "channel": channel}

	res, err := r.subs.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = r.subs.InsertOne(ctx, &model.Subscription{
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ChannelProfile runs the subscriber aggregation for a channel as seen by
// the viewer.
func (r *subscriptionRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"username": username}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribed_to",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"subscriber_count":            bson.M{"$size": "$subscribers"},
			"channel_subscribed_to_count": bson.M{"$size": "$subscribed_to"},
			"is_subscribed":               bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"username":                    1,
			"email":                       1,
			"full_name":                   1,
			"avatar":                      1,
			"cover_image":                 1,
			"subscriber_count":            1,
			"channel_subscribed_to_count": 1,
			"is_subscribed":               1,
		}}},
	}

	cur, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var profiles []model.ChannelProfile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &profiles[0], nil
}
