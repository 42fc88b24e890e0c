package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hris/internal/auth"
	"hris/internal/certificate"
	"hris/internal/cloudinary"
	"hris/internal/config"
	"hris/internal/employee"
	"hris/internal/httpmiddleware"
	"hris/internal/importer"
	"hris/internal/mailer"
	"hris/internal/queue"
	"hris/internal/recruit"
	"hris/internal/store"
	"hris/internal/training"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "hris:jobs")
	}

	// Cloudinary client (nil when not configured; upload/certificate
	// endpoints answer 503 in that case).
	var cdn *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdn = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("cloudinary not configured, uploads disabled")
	}

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailFromName)
	if mail == nil {
		log.Println("smtp not configured, mail disabled")
	}

	empRepo := employee.NewRepository(db.Client)
	trainRepo := training.NewRepository(db.Client)
	certRepo := certificate.NewRepository(db.Client)
	recruitRepo := recruit.NewRepository(db.Client)

	trainSvc := training.NewService(trainRepo, q, empRepo.SignatureDefaults)
	var certSvc *certificate.Service
	if cdn != nil {
		certSvc = certificate.NewService(certRepo, cdn, empRepo, cfg.InstitutionName)
	}
	var importMailer importer.Mailer
	if mail != nil {
		importMailer = mail
	}
	importSvc := importer.NewService(empRepo, importMailer, cfg.PasswordLength, cfg.ImportMaxRows, cfg.MailDelay)

	h := &handlers{
		cfg:       cfg,
		employees: empRepo,
		trainings: trainSvc,
		certs:     certSvc,
		certRepo:  certRepo,
		recruits:  recruitRepo,
		importer:  importSvc,
		cdn:       cdn,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/login", h.login)
	// Applicant intake stays open; everything else needs a token.
	r.POST("/v1/applications", h.submitApplication)

	authed := r.Group("/v1", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))
	authed.POST("/upload", h.upload)

	staff := authed.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleHRC))
	staff.GET("/trainings", h.listTrainings)
	staff.POST("/trainings", h.createTraining)
	staff.GET("/trainings/:id", h.getTraining)
	staff.PUT("/trainings/:id", h.updateTraining)
	staff.PUT("/trainings/:id/attendance", h.saveAttendance)
	staff.POST("/trainings/:id/certificates", h.regenerateCertificates)
	staff.GET("/trainings/:id/certificates", h.listCertificates)
	staff.GET("/employees", h.listEmployees)
	staff.GET("/depots", h.listDepots)
	staff.GET("/signature-defaults", h.getSignatureDefaults)
	staff.PUT("/signature-defaults", h.putSignatureDefaults)
	staff.GET("/applications", h.listApplications)
	staff.PUT("/applications/:id/status", h.updateApplicationStatus)
	staff.GET("/pending-applicants", h.listPendingApplicants)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/trainings/:id", h.deleteTraining)
	admin.POST("/imports/employees", h.importEmployees)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // imports and certificate batches are slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
