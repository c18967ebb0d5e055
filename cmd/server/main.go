package main // Entry point package

import (
	"log" // Logging library for startup failures before zap exists

	"github.com/joho/godotenv" // Loads .env files into the environment
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/config"
	"github.com/rebbitapp/rebbit-api/internal/database"
	"github.com/rebbitapp/rebbit-api/internal/handler"
	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/queue"
	"github.com/rebbitapp/rebbit-api/internal/repository"
	"github.com/rebbitapp/rebbit-api/internal/router"
	"github.com/rebbitapp/rebbit-api/internal/service"
)

func main() {
	// .env is optional; in production the variables come from the runtime.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.DBName, cfg.MigrationsDir); err != nil {
		logger.Fatal("database migrate", zap.Error(err))
	}

	// Repositories over the shared connection pool.
	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	lists := repository.NewMyListRepo(db)
	upvotes := repository.NewUpvoteRepo(db)

	// Outbound mail goes through RabbitMQ; the consumer drains the queue in
	// the background and talks SMTP. Publishing never blocks a request.
	mailer := service.NewMailer(cfg.AMQPURL, logger)
	go queue.StartMailConsumer(cfg, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())

	// Rate limiting is optional: without a Redis address every request
	// passes straight through.
	rdb := config.NewRedisClient(cfg)
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled && rdb != nil {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}

	authH := handler.NewAuthHandler(cfg, users, posts, comments, mailer, logger)
	usersH := handler.NewUsersHandler(cfg, users, posts, comments, logger)
	postsH := handler.NewPostsHandler(posts, comments, logger)
	commentsH := handler.NewCommentsHandler(comments, logger)
	listsH := handler.NewMyListHandler(lists, logger)
	adminH := handler.NewAdminHandler(users, posts, comments, upvotes, logger)
	uploadH := handler.NewUploadHandler(cfg.UploadDir, logger)

	router.RegisterRoutes(e, cfg.UploadDir)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterUsers(e, usersH, cfg.JWTSecret)
	router.RegisterPosts(e, postsH, cfg.JWTSecret)
	router.RegisterComments(e, commentsH, cfg.JWTSecret)
	router.RegisterMyList(e, listsH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)
	router.RegisterUpload(e, uploadH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger picks the zap preset for the environment: structured JSON in
// prod, human-readable output everywhere else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
