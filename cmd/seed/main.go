// Command seed fills the dev store with fake users, posts, likes and
// comments for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"kava/internal/config"
	"kava/internal/devstore"
	"kava/internal/models"
)

var coffeeLines = []string{
	"Perfect crema on this morning's espresso",
	"Trying a new Ethiopian single origin today",
	"Flat white from the corner café, highly recommend",
	"Cold brew season has officially started",
	"Finally dialed in my grinder settings",
	"This cappuccino art deserves a frame",
	"Moka pot Sunday, as tradition demands",
	"V60 pour over with notes of dark chocolate",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	numUsers := flag.Int("users", 8, "number of users to create")
	numPosts := flag.Int("posts", 25, "number of posts to create")
	flag.Parse()

	cfg := config.LoadConfig()
	db, err := devstore.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	ctx := context.Background()
	users := devstore.NewUserRepository(db)
	posts := devstore.NewPostRepository(db)
	likes := devstore.NewLikeRepository(db)
	comments := devstore.NewCommentRepository(db)

	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("password hash failed: %v", err)
	}

	seeded := make([]*models.User, 0, *numUsers)
	for i := 0; i < *numUsers; i++ {
		user := &models.User{
			Username: gofakeit.Username(),
			Email:    gofakeit.Email(),
			Password: string(password),
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("user seed failed: %v", err)
		}
		seeded = append(seeded, user)
	}

	for i := 0; i < *numPosts; i++ {
		author := seeded[rand.Intn(len(seeded))]
		post := &models.Post{
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			ImageRef:       fmt.Sprintf("seed/%s.jpg", gofakeit.UUID()),
			Description:    coffeeLines[rand.Intn(len(coffeeLines))],
			Rating:         rand.Intn(5) + 1,
		}
		if err := posts.Create(ctx, post); err != nil {
			log.Fatalf("post seed failed: %v", err)
		}

		for _, user := range seeded {
			if rand.Float64() < 0.4 {
				if err := likes.Add(ctx, &models.Like{PostID: post.ID, UserID: user.ID}); err != nil {
					log.Fatalf("like seed failed: %v", err)
				}
			}
			if rand.Float64() < 0.25 {
				comment := &models.Comment{
					PostID:         post.ID,
					AuthorID:       user.ID,
					AuthorUsername: user.Username,
					Content:        gofakeit.Sentence(8),
				}
				if err := comments.Create(ctx, comment); err != nil {
					log.Fatalf("comment seed failed: %v", err)
				}
			}
		}
	}

	log.Printf("seeded %d users and %d posts (password for all: password123)", *numUsers, *numPosts)
}
