package server

import (
	"log/slog"
	"net/http"

	"backend-raceplanner/internal/activity"
	"backend-raceplanner/internal/auth"
	"backend-raceplanner/internal/config"
	"backend-raceplanner/internal/db"
	"backend-raceplanner/internal/plan"
	"backend-raceplanner/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Plans  *plan.Service
	// Janitor is nil unless both the activity store and the cache are connected.
	Janitor *activity.Janitor
	Logger  *slog.Logger
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	// a nil *pgxpool.Pool must not end up inside a non-nil interface
	var querier db.Querier
	if pg != nil {
		querier = pg
	}
	repo := activity.NewRepository(querier)

	var history activity.HistoryProvider = repo
	var janitor *activity.Janitor
	if redisClient != nil {
		cache := activity.NewCache(repo, redisClient, cfg.HistoryCacheTTL, log)
		history = cache
		if pg != nil {
			janitor = activity.NewJanitor(repo, cache, log)
		}
	}

	hub := stream.NewHub(redisClient, log)
	plans := plan.NewService(history, plan.Settings{
		LookbackDays: cfg.HistoryLookbackDays,
		HistoryLimit: cfg.HistoryLimit,
	}, log).WithFeed(hub)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      pg,
		Redis:   redisClient,
		Stream:  hub,
		Plans:   plans,
		Janitor: janitor,
		Logger:  log,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		var pg db.Pinger
		if s.DB != nil {
			pg = s.DB
		}
		status := db.Probe(c.UserContext(), pg, s.Redis)
		if !status.Healthy() {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"postgres": status.Postgres,
				"redis":    status.Redis,
			})
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"postgres": status.Postgres,
			"redis":    status.Redis,
		})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	plan.RegisterRoutes(s.App.Group("/race"), s.Plans, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}
