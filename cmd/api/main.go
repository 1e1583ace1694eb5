package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"menuscan/internal/config"
	"menuscan/internal/database"
	"menuscan/internal/database/migration"
	"menuscan/internal/extract"
	handlers "menuscan/internal/http/handler"
	"menuscan/internal/http/middleware"
	"menuscan/internal/otel"
	"menuscan/internal/raster"
	"menuscan/internal/repository/postgres"
	"menuscan/internal/service"
	"menuscan/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	ctx := context.Background()

	// Tracing first so the DB and HTTP layers pick up the global provider
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories
	docRepo := postgres.NewDocumentPostgres(db)
	menuRepo := postgres.NewMenuPostgres(db)
	recipeRepo := postgres.NewRecipePostgres(db)
	deptRepo := postgres.NewDepartmentPostgres(db)

	// Extraction pipeline collaborators
	extractor := &extract.Client{
		BaseURL: cfg.Extractor.BaseURL,
		APIKey:  cfg.Extractor.APIKey,
		Model:   cfg.Extractor.Model,
	}
	renderer := &raster.Pdftoppm{BinaryPath: cfg.Raster.BinaryPath}

	pipeline := service.NewPipelineService(
		renderer, extractor, objStore,
		docRepo, menuRepo, recipeRepo,
		cfg.Raster.ImagesDir, cfg.Raster.FirstPage, cfg.Raster.LastPage,
	)
	docSvc := service.NewDocumentService(objStore, docRepo, menuRepo, recipeRepo, deptRepo, pipeline, "")

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    service.MaxUploadSize + 1<<20, // uploads up to the 50MB PDF limit plus form overhead
	})

	// Global middleware: request IDs, JSON request logs, traces, metrics
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
