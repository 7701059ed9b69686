package server

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/audio"
	googleauth "interview-backend/internal/auth"
	"interview-backend/internal/event"
	"interview-backend/internal/interview"
	"interview-backend/internal/qa"
	"interview-backend/internal/qa/gemini"
	"interview-backend/internal/resumes"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/storage/db"
	"interview-backend/internal/shared/storage/object"
	localstore "interview-backend/internal/shared/storage/object/local"
	s3store "interview-backend/internal/shared/storage/object/s3"
	"interview-backend/internal/transcribe"
	"interview-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware, dependencies and routes.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(rateLimits()),
	)

	// Storage
	store := buildObjectStore(cfg)
	sqlDB := connectDatabase(cfg)

	var userRepo users.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
	} else {
		userRepo = users.NewMemoryRepo()
	}
	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)

	// Question generation and answer scoring
	generator, evaluator := buildQA(cfg)

	var publisher interview.CompletionPublisher
	if cfg.AMQPURL != "" {
		pub, err := event.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("event publisher unavailable, completions will not be announced: %v", err)
		} else {
			publisher = pub
		}
	}

	interviewSvc := interview.NewService(generator, evaluator, userSvc, publisher, cfg.QuestionCount, cfg.StrictPersistence)
	interviewHandler := interview.NewHandler(interviewSvc)

	resumeSvc := resumes.NewService(store, userSvc, cfg.StrictPersistence)
	resumeHandler := resumes.NewHandler(resumeSvc, interviewHandler)

	audioHandler := audio.NewHandler(audio.NewClient(cfg.SpeechAPIURL, cfg.SpeechAPIKey))

	streamer := transcribe.NewWSStreamer(cfg.StreamingSTTURL, cfg.StreamingSTTAPIKey)
	transcribeHandler := transcribe.NewHandler(transcribe.NewSupervisor(streamer, transcribe.DefaultStopWait))

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	root := r.Group("/")
	root.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	root.GET("/metrics", metrics.Handler())
	googleAuthSvc.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	resumeHandler.RegisterRoutes(root)
	interviewHandler.RegisterRoutes(root)
	audioHandler.RegisterRoutes(root)
	transcribeHandler.RegisterRoutes(root)

	return r
}

func buildObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("s3 store unavailable, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func connectDatabase(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	conn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(context.Background(), conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		return nil
	}
	return conn
}

func buildQA(cfg config.Config) (qa.Generator, qa.Evaluator) {
	if cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel)
		if err == nil {
			return client, qa.NewDegradingEvaluator(client)
		}
		log.Printf("gemini client unavailable, using fallback generator: %v", err)
	}
	return qa.Fallback{}, qa.NewDegradingEvaluator(nil)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"EVALUATE": {Rate: 1, Burst: 5},
			"UPLOAD":   {Rate: 0.5, Burst: 3},
		},
		GroupFor: func(c *gin.Context) string {
			switch c.FullPath() {
			case "/api/evaluate":
				return "EVALUATE"
			case "/upload", "/upload_resume":
				return "UPLOAD"
			default:
				return "DEFAULT"
			}
		},
	}
}
