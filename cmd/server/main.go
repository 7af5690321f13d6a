package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gramsetu/loan-advisor/internal/config"
	"github.com/gramsetu/loan-advisor/internal/domain/fiber/handler"
	"github.com/gramsetu/loan-advisor/internal/middleware"
	"github.com/gramsetu/loan-advisor/internal/model"
	"github.com/gramsetu/loan-advisor/internal/repository"
	"github.com/gramsetu/loan-advisor/internal/service"
	"github.com/gramsetu/loan-advisor/internal/usecase"
	"github.com/gramsetu/loan-advisor/internal/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		ErrorHandler: util.FiberErrorHandler,
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return config.LoadAppConfig().Env != "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()
	redisClient := ConnectRedis(ctx)

	assessmentRepo := repository.NewAssessmentRepository(db)
	productRepo := repository.NewProductRepository(db)
	chatRepo := repository.NewChatRepository(db)
	chatCache := repository.NewChatCache(redisClient)

	gateway := service.NewAIGatewayService()
	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		log.Fatal(err)
	}

	assessmentUC := usecase.NewAssessmentUsecase(assessmentRepo, productRepo, gateway, gemini)
	chatUC := usecase.NewChatUsecase(chatRepo, chatCache, gemini)

	handler.NewAssessmentHandler(assessmentUC).RegisterRoutes(app)
	handler.NewChatHandler(chatUC).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
		dbConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(
		&model.LoanAssessment{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.LoanProduct{},
	)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}

// ConnectRedis returns nil when REDIS_ADDR is not set; the chat cache treats
// a nil client as disabled.
func ConnectRedis(ctx context.Context) *redis.Client {
	redisConfig := config.LoadRedisConfig()
	if redisConfig.Addr == "" {
		log.Println("REDIS_ADDR not set, chat history cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: could not reach redis at %s: %v", redisConfig.Addr, err)
	}
	return client
}
