// @title           ProdBay API
// @version         1.0
// @description     ProdBay production-management backend - brief intake, asset planning, supplier quoting.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ProdBay-app/ProdBay-sub001/docs"
	"github.com/ProdBay-app/ProdBay-sub001/handlers"
	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/storage"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://prodbay.example",
		"http://localhost:5173",
		"http://localhost:3000",
	}
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// cronRunning guards against overlapping maintenance runs.
var cronRunning int32

func safeGo(ctx context.Context, wg *sync.WaitGroup, name string, fn func(context.Context) error, cronLogger *log.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
		}
	}()
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	emailService := services.NewEmailService(db)
	if !emailService.Enabled() {
		log.Println("Warning: SMTP is not configured. Quote request emails will not be sent.")
	}

	aiService := services.NewAIService()
	if !aiService.Enabled() {
		log.Println("AI analysis endpoint not configured, falling back to the keyword classifier.")
	}

	// Daily maintenance at 03:30: drop expired sessions, expire stale
	// pending quotes that never got a response.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 3 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(ctx, &wg, "ExpireStalePendingQuotes", func(ctx context.Context) error {
			expired, err := storage.ExpireStalePendingQuotes(db, 30*24*time.Hour)
			if err != nil {
				return err
			}
			if expired > 0 {
				log.Printf("Expired %d stale pending quotes", expired)
			}
			return nil
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	producer := handlers.RequireRole(db, models.RoleProducer)
	producerOrClient := handlers.RequireRole(db, models.RoleProducer, models.RoleClient)
	supplier := handlers.RequireRole(db, models.RoleSupplier)

	// ==================== 1. AUTH ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.POST("/api/logout-all", handlers.LogoutAllHandler(db))

	// ==================== 2. PROJECTS ====================
	r.POST("/api/projects", producerOrClient, handlers.CreateProject(db, aiService))
	r.GET("/api/projects", producerOrClient, handlers.GetProjects(db))
	r.GET("/api/projects/:id", producerOrClient, handlers.GetProjectByID(db))
	r.PUT("/api/projects/:id", producer, handlers.UpdateProject(db))
	r.DELETE("/api/projects/:id", producer, handlers.DeleteProject(db))
	r.GET("/api/projects/:id/dashboard", producerOrClient, handlers.GetProjectDashboard(db))
	r.GET("/api/projects/:id/assets", producerOrClient, handlers.GetAssetsByProject(db))
	r.POST("/api/projects/:id/attachments", producerOrClient, handlers.UploadProjectAttachment(db))
	r.GET("/api/projects/:id/attachments", producerOrClient, handlers.ListProjectAttachments(db))
	r.GET("/api/projects/:id/attachments/download", producerOrClient, handlers.ServeProjectAttachment(db))

	// ==================== 3. ASSETS ====================
	r.POST("/api/assets", producer, handlers.CreateAsset(db))
	r.PUT("/api/assets/:id", producer, handlers.UpdateAsset(db))
	r.DELETE("/api/assets/:id", producer, handlers.DeleteAsset(db))
	r.GET("/api/assets/:id/quotes", producer, handlers.GetQuotesByAsset(db))

	// ==================== 4. SUPPLIERS ====================
	r.POST("/api/suppliers", producer, handlers.CreateSupplier(db))
	r.GET("/api/suppliers", producer, handlers.GetSuppliers(db))
	r.GET("/api/suppliers/:id", producer, handlers.GetSupplierByID(db))
	r.PUT("/api/suppliers/:id", producer, handlers.UpdateSupplier(db))
	r.DELETE("/api/suppliers/:id", producer, handlers.DeleteSupplier(db))
	r.POST("/api/suppliers/:id/contacts", producer, handlers.AddSupplierContact(db))
	r.DELETE("/api/suppliers/:id/contacts/:contact_id", producer, handlers.DeleteSupplierContact(db))

	// ==================== 5. QUOTES ====================
	r.POST("/api/quote-requests", producer, handlers.RequestQuotes(db, gormDB, emailService))
	r.POST("/api/quotes/:id/accept", producer, handlers.AcceptQuoteHandler(db))
	r.POST("/api/quotes/:id/reject", producer, handlers.RejectQuoteHandler(db))
	r.GET("/api/quotes/:id/messages", producer, handlers.GetQuoteMessages(gormDB))
	r.POST("/api/quotes/:id/messages", producer, handlers.PostQuoteMessage(gormDB))

	// ==================== 6. SUPPLIER PORTAL (token-addressed) ====================
	r.GET("/api/portal/quote/:token", handlers.GetPortalQuote(db))
	r.POST("/api/portal/quote/:token/submit", handlers.SubmitPortalQuote(db))
	r.GET("/api/portal/quote/:token/messages", handlers.GetPortalMessages(db, gormDB))
	r.POST("/api/portal/quote/:token/messages", handlers.PostPortalMessage(db, gormDB))
	r.GET("/api/supplier/quotes", supplier, handlers.GetSupplierOpenQuotes(db))

	// ==================== 7. AUTOMATION & AI ====================
	r.POST("/api/automation/analyze-brief", producer, handlers.AnalyzeBrief())
	r.POST("/api/automation/generate-assets", producer, handlers.GenerateAssets(db))
	r.POST("/api/brief/highlights", producerOrClient, handlers.BriefHighlights())
	r.POST("/api/ai/suggest-assets", producer, handlers.SuggestAssets(aiService))
	r.POST("/api/ai/suggest-suppliers", producer, handlers.SuggestSuppliers(db, aiService))

	// ==================== 8. EMAIL TEMPLATES ====================
	r.POST("/api/email-templates", producer, handlers.CreateEmailTemplate(db, emailService))
	r.GET("/api/email-templates", producer, handlers.GetEmailTemplates(db))
	r.GET("/api/email-templates/:id", producer, handlers.GetEmailTemplateByID(db))
	r.PUT("/api/email-templates/:id", producer, handlers.UpdateEmailTemplate(db, emailService))
	r.DELETE("/api/email-templates/:id", producer, handlers.DeleteEmailTemplate(db))
	r.POST("/api/email-templates/:id/preview", producer, handlers.PreviewEmailTemplate(db, emailService))

	// ==================== 9. SETTINGS ====================
	r.GET("/api/settings", producer, handlers.GetProducerSettings(gormDB))
	r.PUT("/api/settings", producer, handlers.UpdateProducerSettings(gormDB))

	// ==================== 10. EXPORTS ====================
	r.GET("/api/export/quotes/:project_id", producer, handlers.ExportProjectQuotes(db))
	r.GET("/api/quote_pdf/:quote_id", producer, handlers.GenerateQuotePDF(db))
	r.GET("/api/portal_qr/:token", handlers.GeneratePortalQR(db))

	// ==================== 11. DOCS ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		log.Println("Timed out waiting for running cron jobs")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
