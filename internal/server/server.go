package server

import (
	"time"

	"backend-presence/internal/auth"
	"backend-presence/internal/config"
	"backend-presence/internal/geofence"
	"backend-presence/internal/location"
	"backend-presence/internal/session"
	"backend-presence/internal/stream"
	"backend-presence/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App         *fiber.App
	Cfg         config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Stream      *stream.Hub
	Coordinator *tracker.Coordinator
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	evaluator := geofence.NewEvaluator()
	sessions := session.NewService(db)

	retention := time.Duration(cfg.SampleRetentionDays) * 24 * time.Hour
	coord := tracker.NewCoordinator(sessions, evaluator,
		tracker.WithBatchSize(cfg.SampleBatchSize),
		tracker.WithRetention(retention),
		tracker.WithSink(stream.NewPresenceSink(hub)),
	)
	router := tracker.NewRouter(coord)
	evaluator.Bind(router)

	s := &Server{
		App:         app,
		Cfg:         cfg,
		DB:          db,
		Redis:       redisClient,
		Stream:      hub,
		Coordinator: coord,
	}

	registerRoutes(s, evaluator, router, sessions)
	return s
}

func registerRoutes(s *Server, evaluator *geofence.Evaluator, router *tracker.Router, sessions *session.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	location.RegisterRoutes(s.App.Group("/locations"), location.NewService(s.DB), jwtMiddleware)
	session.RegisterRoutes(s.App.Group("/sessions"), sessions)
	tracker.RegisterRoutes(s.App.Group("/tracking"), s.Coordinator, jwtMiddleware)
	geofence.RegisterRoutes(s.App.Group("/geofence"), evaluator, router, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
