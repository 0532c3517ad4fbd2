package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"veil_server/config"
	"veil_server/metrics"
	"veil_server/middleware"
	"veil_server/models"
	"veil_server/repositories"
	"veil_server/routes"
	"veil_server/scheduler"
	"veil_server/services"
	"veil_server/socket"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stdout
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.LogFormat == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := newLogger(cfg)
	ctx := context.Background()

	// Storage clients.
	dynamoClient, err := services.InitializeDynamoDBClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize DynamoDB client")
	}
	dynamo := &services.DynamoService{Client: dynamoClient}

	s3Client, err := services.InitializeS3Client(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3 client")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to Redis")
	}

	// Repositories.
	userRepo := repositories.NewUserRepository(dynamo)
	creditRepo := repositories.NewCreditRepository(dynamo)
	matchRepo := repositories.NewMatchRepository(dynamo)
	messageRepo := repositories.NewMessageRepository(dynamo)
	replyRepo := repositories.NewReplyRepository(dynamo)
	notificationRepo := repositories.NewNotificationRepository(dynamo)

	// Ambient services.
	verifier := middleware.NewIdentityClient(cfg.Identity.VerifyURL, cfg.Identity.Timeout)
	presence := services.NewPresenceService(rdb, 2*time.Minute, log)
	media := services.NewMediaService(services.NewS3Presigner(s3Client), cfg.Media.Bucket, cfg.Media.ProxyBase, cfg.Media.URLExpiry, log)

	generator, err := services.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize text generator")
	}
	defer generator.Close()

	// Realtime transport. Constructed before the domain services because it
	// implements the Broadcaster they push events through.
	rt := socket.NewServer(verifier, matchRepo, presence, log)

	// Domain services.
	personaSvc := services.NewPersonaService(models.DefaultPersonas(), log)
	creditSvc := services.NewCreditService(creditRepo, cfg.Credits.DailyAllotment, services.ActionCosts{
		FindMatch:     cfg.Credits.FindMatchCost,
		SkipMatch:     cfg.Credits.SkipMatchCost,
		RequestReveal: cfg.Credits.RequestRevealCost,
		AcceptReveal:  cfg.Credits.AcceptRevealCost,
	}, log)
	notifySvc := services.NewNotificationService(notificationRepo, presence, rt, log)
	matchSvc := services.NewMatchService(userRepo, matchRepo, creditSvc, personaSvc, media, notifySvc, rt, cfg.Matching.ActivityWindow, log)
	replySvc := services.NewPersonaReplyService(replyRepo, messageRepo, matchRepo, personaSvc,
		generator, nil, cfg.Replies.HistoryDepth, cfg.Gemini.Timeout, cfg.Replies.DispatchBatch, log)
	chatSvc := services.NewChatService(userRepo, matchRepo, messageRepo, personaSvc, matchSvc, replySvc, rt, media, log)

	// Close the service cycle: persona replies are delivered through the
	// chat path, and skipping a match cancels its scheduled replies.
	replySvc.Deliver = chatSvc
	matchSvc.Replies = replySvc

	// Background jobs.
	jobs := scheduler.New(userRepo, creditSvc, replySvc, log)
	if err := jobs.Start(cfg.Replies.DispatchInterval); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer jobs.Stop()

	go func() {
		if err := rt.Serve(); err != nil {
			log.Error().Err(err).Msg("socket server stopped")
		}
	}()
	defer rt.Close()

	// HTTP surface.
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.Handle("/socket.io/", rt.IO)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(verifier, log))
	routes.RegisterMatchRoutes(api, matchSvc)
	routes.RegisterCreditRoutes(api, creditSvc)
	routes.RegisterChatRoutes(api, chatSvc)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
