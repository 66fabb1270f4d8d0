package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription records that one user follows another user's channel.
type Subscription struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `json:"subscriber" bson:"subscriber"`
	Channel    primitive.ObjectID `json:"channel" bson:"channel"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// ChannelProfile is the subscriber-aggregation view of a user, computed by
// the aggregation pipeline over users and subscriptions.
type ChannelProfile struct {
	ID                       primitive.ObjectID `json:"id" bson:"_id"`
	Username                 string             `json:"username" bson:"username"`
	Email                    string             `json:"email" bson:"email"`
	FullName                 string             `json:"full_name" bson:"full_name"`
	Avatar                   string             `json:"avatar" bson:"avatar"`
	CoverImage               string             `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	SubscriberCount          int64              `json:"subscriber_count" bson:"subscriber_count"`
	ChannelSubscribedToCount int64              `json:"channel_subscribed_to_count" bson:"channel_subscribed_to_count"`
	IsSubscribed             bool               `json:"is_subscribed" bson:"is_subscribed"`
}
