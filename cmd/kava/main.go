// Command kava is a terminal client for the coffee feed: it signs in,
// keeps a live local copy of the feed via the change subscription and
// polling, and applies user actions optimistically.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"kava/internal/config"
	"kava/internal/feed"
	"kava/internal/models"
	"kava/internal/remote"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	register := flag.String("register", "", "register a new account with this username")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := remote.NewClient(cfg.RemoteURL)

	var err error
	if *register != "" {
		_, err = client.Register(ctx, *register, *email, *password)
	} else {
		_, err = client.Login(ctx, *email, *password)
	}
	if err != nil {
		log.Fatalf("sign-in failed: %v", err)
	}
	profile := client.Profile()
	fmt.Printf("signed in as %s\n", profile.Username)

	model := feed.NewModel()
	reconciler := feed.NewReconciler(model, client)
	mutator := feed.NewMutator(model, client, reconciler)
	mutator.SetSession(&feed.Session{UserID: profile.ID, Username: profile.Username})

	// Initial sync before any signals arrive.
	if err := reconciler.RefreshPosts(ctx); err != nil {
		log.Fatalf("initial sync failed: %v", err)
	}
	reconciler.Apply(ctx, feed.Signal{Table: models.TableLikes})

	mode := feed.ModeForPlatform(cfg.Platform)
	var sub feed.Subscriber
	if mode != feed.ModePoll {
		s, err := client.SubscribeChanges(ctx)
		if err != nil {
			log.Printf("change subscription unavailable, polling only: %v", err)
			mode = feed.ModePoll
		} else {
			sub = s
		}
	}

	changes := feed.NewFeed(mode, sub, cfg.PollInterval)
	defer changes.Close()
	go reconciler.Run(ctx, changes.Signals())

	repl(ctx, model, mutator, reconciler)
}

func repl(ctx context.Context, model *feed.Model, mutator *feed.Mutator, reconciler *feed.Reconciler) {
	fmt.Println("commands: feed, like <n>, comment <n> <text>, comments <n>, rmcomment <n> <m>, rmpost <n>, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "quit":
			return
		case "feed":
			printFeed(model)
		case "like":
			if id, ok := postArg(model, fields, 1); ok {
				err = mutator.ToggleLike(ctx, id)
			}
		case "comment":
			if id, ok := postArg(model, fields, 1); ok && len(fields) > 2 {
				err = mutator.SubmitComment(ctx, id, strings.Join(fields[2:], " "))
			}
		case "comments":
			if id, ok := postArg(model, fields, 1); ok {
				model.SetCommentsOpen(id, true)
				if rerr := reconciler.RefreshComments(ctx, id); rerr != nil {
					fmt.Printf("error: %v\n", rerr)
				}
				for i, c := range model.Comments(id) {
					fmt.Printf("  [%d] %s: %s\n", i, c.AuthorUsername, c.Content)
				}
			}
		case "rmcomment":
			if id, ok := postArg(model, fields, 1); ok && len(fields) > 2 {
				comments := model.Comments(id)
				var idx int
				if _, serr := fmt.Sscan(fields[2], &idx); serr == nil && idx >= 0 && idx < len(comments) {
					err = mutator.DeleteComment(ctx, id, comments[idx].ID)
				}
			}
		case "rmpost":
			if id, ok := postArg(model, fields, 1); ok {
				err = mutator.DeletePost(ctx, id)
			}
		default:
			fmt.Println("unknown command")
		}

		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func printFeed(model *feed.Model) {
	for i, p := range model.Posts() {
		likedMark := " "
		if model.Liked(p.ID) {
			likedMark = "*"
		}
		fmt.Printf("[%d]%s %s: %s (likes %d, comments %d)\n",
			i, likedMark, p.AuthorUsername, p.Description, p.LikeCount, p.CommentCount)
	}
}

func postArg(model *feed.Model, fields []string, pos int) (string, bool) {
	if len(fields) <= pos {
		fmt.Println("post number required")
		return "", false
	}
	var idx int
	if _, err := fmt.Sscan(fields[pos], &idx); err != nil {
		fmt.Println("post number required")
		return "", false
	}
	posts := model.Posts()
	if idx < 0 || idx >= len(posts) {
		fmt.Println("no such post")
		return "", false
	}
	return posts[idx].ID, true
}
