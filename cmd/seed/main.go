package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"chirp/internal/config"
	"chirp/internal/db"
	"chirp/internal/model"
	"chirp/internal/repository"
)

// seedUser is one demo account with a handful of tweets.
type seedUser struct {
	fullName string
	username string
	email    string
	password string
	tweets   []string
}

var seedUsers = []seedUser{
	{
		fullName: "Alice Example",
		username: "alice",
		email:    "alice@example.com",
		password: "password123",
		tweets:   []string{"hello world", "second tweet"},
	},
	{
		fullName: "Bob Example",
		username: "bob",
		email:    "bob@example.com",
		password: "password123",
		tweets:   []string{"first!"},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()
	ctx := context.Background()

	mongoDB, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer mongoDB.Client().Disconnect(ctx)
	log.Println("Connected to database")

	userRepo := repository.NewUserRepository(mongoDB)
	tweetRepo := repository.NewTweetRepository(mongoDB)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	created, skipped, tweets := 0, 0, 0
	for _, su := range seedUsers {
		exists, err := userRepo.ExistsByLogin(ctx, su.username, su.email)
		if err != nil {
			log.Fatalf("Failed to check user %s: %v", su.username, err)
		}
		if exists {
			log.Printf("Skipping existing user: %s", su.username)
			skipped++
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.username, err)
		}

		user := &model.User{
			Username:     su.username,
			Email:        su.email,
			FullName:     su.fullName,
			PasswordHash: string(hashed),
			Avatar:       "https://placehold.co/128x128",
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.username, err)
		}
		created++

		for _, content := range su.tweets {
			if err := tweetRepo.Create(ctx, &model.Tweet{Content: content, Owner: user.ID}); err != nil {
				log.Fatalf("Failed to create tweet for %s: %v", su.username, err)
			}
			tweets++
		}
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
	log.Printf("  - Tweets created: %d", tweets)
}
