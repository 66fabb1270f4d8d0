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

// UserRepository defines user persistence operations.
type UserRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByLogin(ctx context.Context, username, email string) (*model.User, error)
	ExistsByLogin(ctx context.Context, username, email string) (bool, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

type userRepository struct {
	col *mongo.Collection
}

// NewUserRepository builds a MongoDB-backed repository.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{col: db.Collection("users")}
}

// EnsureIndexes creates the unique username and email indexes.
func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

// Create inserts a new user and fills in its generated id.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a user by id.
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin matches a user by username or email.
func (r *userRepository) FindByLogin(ctx context.Context, username, email string) (*model.User, error) {
	var user model.User
	if err := r.col.FindOne(ctx, loginFilter(username, email)).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByLogin reports whether a user with the given username or email exists.
func (r *userRepository) ExistsByLogin(ctx context.Context, username, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, loginFilter(username, email))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetRefreshToken overwrites the stored refresh token; an empty token clears
// it, invalidating future refresh attempts.
func (r *userRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refresh_token": token, "updated_at": time.Now()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refresh_token": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		}
	}
	_, err := r.col.UpdateByID(ctx, id, update)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"password": passwordHash, "updated_at": time.Now()},
	})
	return err
}

func loginFilter(username, email string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
}
