package devstore

import (
	"context"
	"log"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kava/internal/config"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    UserRepository
	postRepo    PostRepository
	likeRepo    LikeRepository
	commentRepo CommentRepository
	notifier    *Notifier
	hub         *Hub
}

// NewServer creates a server instance, connecting the database and Redis
// from config. Redis being down is not fatal: change events are then
// dropped and clients fall back to polling.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis unavailable, change events disabled: %v", err)
		rdb = nil
	}

	return NewServerWithDeps(cfg, db, rdb), nil
}

// NewServerWithDeps wires a server around already-open dependencies.
// Used by tests to inject in-memory sqlite and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		redis:       rdb,
		userRepo:    NewUserRepository(db),
		postRepo:    NewPostRepository(db),
		likeRepo:    NewLikeRepository(db),
		commentRepo: NewCommentRepository(db),
		hub:         NewHub(),
	}
	s.notifier = NewNotifier(rdb)
	return s
}

// StartWiring begins forwarding published change events to connected
// websocket clients. No-op without Redis.
func (s *Server) StartWiring(ctx context.Context) error {
	return s.hub.StartWiring(ctx, s.notifier)
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Kava Store",
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection",
	}))

	prom := fiberprometheus.New("kavastore")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	s.setupRoutes(app)
	return app
}

func (s *Server) setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.HealthCheck)

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	// Public reads
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:id/comments/count", s.GetCommentCount)
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/:id/likes/count", s.GetLikeCount)
	api.Get("/leaderboard", s.GetLeaderboard)

	// Change subscription (token validated inside the handler)
	api.Use("/changes", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/changes", s.ChangesHandler())

	// Protected routes
	protected := api.Group("", s.AuthRequired())
	protected.Post("/posts", s.CreatePost)
	protected.Delete("/posts/:id", s.DeletePost)
	protected.Get("/posts/:id/likes/me", s.HasLike)
	protected.Post("/posts/:id/likes", s.AddLike)
	protected.Delete("/posts/:id/likes", s.RemoveLike)
	protected.Get("/likes/me", s.ListMyLikes)
	protected.Post("/posts/:id/comments", s.CreateComment)
	protected.Delete("/comments/:id", s.DeleteComment)
	protected.Delete("/images/:ref", s.DeleteImage)
}

// HealthCheck reports liveness.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
