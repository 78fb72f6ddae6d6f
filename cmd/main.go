package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"untitledone/internal/cache"
	"untitledone/internal/config"
	"untitledone/internal/features/audit_logs"
	comments_controllers "untitledone/internal/features/comments/controllers"
	notifications_controllers "untitledone/internal/features/notifications/controllers"
	notifications_services "untitledone/internal/features/notifications/services"
	projects_controllers "untitledone/internal/features/projects/controllers"
	"untitledone/internal/features/realtime"
	"untitledone/internal/features/retention"
	share_links_controllers "untitledone/internal/features/share_links/controllers"
	system_healthcheck "untitledone/internal/features/system/healthcheck"
	users_controllers "untitledone/internal/features/users/controllers"
	users_middleware "untitledone/internal/features/users/middleware"
	users_services "untitledone/internal/features/users/services"
	"untitledone/internal/util/background"
	cache_utils "untitledone/internal/util/cache"
	env_utils "untitledone/internal/util/env"
	"untitledone/internal/util/logger"
	"untitledone/internal/util/validation"
	_ "untitledone/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title UntitledOne Backend API
// @version 1.0
// @description API for UntitledOne: project comments, mentions, notifications and share links
// @termsOfService http://swagger.io/terms/

// @host localhost:4005
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.GetLogger()
	config.StartListeningForShutdownSignal()
	setUpDependencies(log)

	testCacheConnection(log)

	runMigrations(log)

	handlePasswordReset(log)

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	// Add GZIP compression middleware
	ginApp.Use(gzip.Gzip(
		gzip.DefaultCompression,
		// Don't compress already compressed files
		gzip.WithExcludedExtensions(
			[]string{".png", ".gif", ".jpeg", ".jpg", ".ico", ".svg", ".pdf", ".mp4"},
		),
		// websocket upgrades must not be wrapped
		gzip.WithExcludedPaths([]string{"/api/v1/notifications/ws"}),
	))

	enableCors(ginApp)
	setUpRoutes(ginApp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runBackgroundTasks(ctx, log)
	mountFrontend(ginApp)

	startServerWithGracefulShutdown(log, ginApp, cancel)
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine, stopBackground context.CancelFunc) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":4005",
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// The context is used to inform the server it has 10 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	realtime.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	notifications_services.GetDigestService().Stop()
	retention.GetRetentionBackgroundService().StopWorkers()
	stopBackground()

	// pending email and digest enqueue tasks are drained last
	if err := background.GetRunner().Shutdown(ctx); err != nil {
		log.Error("Background tasks did not finish in time", "error", err)
	}

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Mount Swagger UI
	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	userService := users_services.GetUserService()

	// Public routes
	userController := users_controllers.GetUserController()
	userController.RegisterRoutes(v1)
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)

	shareLinkController := share_links_controllers.GetShareLinkController()
	shareLinkController.RegisterPublicRoutes(v1, userService)

	// Protected routes
	protected := v1.Group("")
	protected.Use(users_middleware.AuthMiddleware(userService))

	audit_logs.GetAuditLogController().RegisterRoutes(protected)
	userController.RegisterProtectedRoutes(protected)
	projects_controllers.GetProjectController().RegisterRoutes(protected)
	projects_controllers.GetMembershipController().RegisterRoutes(protected)
	comments_controllers.GetCommentController().RegisterRoutes(protected)
	notifications_controllers.GetNotificationController().RegisterRoutes(protected)
	shareLinkController.RegisterRoutes(protected)
	realtime.GetRealtimeController().RegisterRoutes(protected)
}

func setUpDependencies(log *slog.Logger) {
	if err := validation.RegisterValidators(); err != nil {
		log.Error("Failed to register validators", "error", err)
		os.Exit(1)
	}

	audit_logs.SetupDependencies()
}

func runBackgroundTasks(ctx context.Context, log *slog.Logger) {
	log.Info("Preparing to run background tasks...")

	background.GetRunner().Start()

	if err := realtime.Start(ctx); err != nil {
		log.Error("Failed to subscribe to realtime channel, staying local", "error", err)
	}

	if err := notifications_services.GetDigestService().Start(ctx, config.GetEnv().DigestCron); err != nil {
		log.Error("Failed to start digest scheduler", "error", err)
		os.Exit(1)
	}

	retention.GetRetentionBackgroundService().StartWorkers()

	log.Info("Background tasks started successfully")
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func testCacheConnection(log *slog.Logger) {
	log.Info("Testing cache connection...")

	if err := cache_utils.PingCache(context.Background(), cache.GetCache()); err != nil {
		log.Error("Failed to connect to cache", "error", err)
		os.Exit(1)
	}

	log.Info("Cache connection test successful")
}

func runMigrations(log *slog.Logger) {
	log.Info("Running database migrations...")

	cmd := exec.Command("goose", "up")
	cmd.Env = append(
		os.Environ(),
		"GOOSE_DRIVER=postgres",
		"GOOSE_DBSTRING="+config.GetEnv().DatabaseDsn,
		"GOOSE_MIGRATION_DIR=./migrations",
	)

	cmd.Dir = config.GetEnv().BackendRootPath

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to run migrations", "error", err, "output", string(output))
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully", "output", string(output))
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// Setup CORS
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"Accept-Language",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
			},
			ExposeHeaders:    []string{"X-Next-Cursor"},
			AllowCredentials: true,
		}))
	}
}

func mountFrontend(ginApp *gin.Engine) {
	staticDir := "./ui/build"
	ginApp.NoRoute(func(c *gin.Context) {
		path := filepath.Join(staticDir, c.Request.URL.Path)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		c.File(filepath.Join(staticDir, "index.html"))
	})
}

func handlePasswordReset(log *slog.Logger) {
	newPassword := flag.String("new-password", "", "Set a new password for the user")
	email := flag.String("email", "", "Email of the user to reset password")

	flag.Parse()

	if *newPassword == "" {
		return
	}

	log.Info("Found reset password command - reseting password...")

	if *email == "" {
		log.Info("No email provided, please provide an email via --email=\"some@email.com\" flag")
		os.Exit(1)
	}

	if err := users_services.GetUserService().ChangeUserPasswordByEmail(*email, *newPassword); err != nil {
		log.Error("Failed to reset password", "error", err)
		os.Exit(1)
	}

	log.Info("Password reset successfully")
	os.Exit(0)
}
