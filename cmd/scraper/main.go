package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"menuscan/internal/config"
	"menuscan/internal/database"
	"menuscan/internal/database/migration"
	"menuscan/internal/extract"
	"menuscan/internal/raster"
	"menuscan/internal/repository/postgres"
	"menuscan/internal/service"
	"menuscan/internal/storage"
)

// The scraper runs the extraction pipeline outside the HTTP server.
//
// Two modes:
//
//	-doc-id <uuid>   re-run the pipeline for an already uploaded document,
//	                 downloading its PDF from object storage when the local
//	                 copy is gone.
//	-input <pdf>     standalone: rasterize and extract a local PDF and write
//	                 the raw menu records to -output as JSON, without
//	                 touching the database or object storage.
func main() {
	var (
		docID  = flag.String("doc-id", "", "re-process the document with this ID")
		input  = flag.String("input", "", "local PDF to extract in standalone mode")
		start  = flag.Int("start", raster.DefaultFirstPage, "first page to rasterize")
		end    = flag.Int("end", raster.DefaultLastPage, "last page to rasterize")
		output = flag.String("output", "menus.json", "output file for standalone mode")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	switch {
	case *docID != "":
		if err := reprocess(ctx, cfg, *docID); err != nil {
			log.Fatalf("reprocess failed: %v", err)
		}
	case *input != "":
		if err := standalone(ctx, cfg, *input, *start, *end, *output); err != nil {
			log.Fatalf("extraction failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// reprocess wires the full pipeline against the configured database and
// object storage and re-runs it for one stored document.
func reprocess(ctx context.Context, cfg *config.AppConfig, docID string) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.Local, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	menuRepo := postgres.NewMenuPostgres(db)
	recipeRepo := postgres.NewRecipePostgres(db)
	deptRepo := postgres.NewDepartmentPostgres(db)

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

	if err := docSvc.ProcessStored(ctx, docID); err != nil {
		return err
	}
	log.Printf("document %s processed", docID)
	return nil
}

// standalone rasterizes and extracts a local PDF without persisting anything.
func standalone(ctx context.Context, cfg *config.AppConfig, pdfPath string, firstPage, lastPage int, output string) error {
	outDir, err := os.MkdirTemp("", "menuscan-pages-*")
	if err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	renderer := &raster.Pdftoppm{BinaryPath: cfg.Raster.BinaryPath}
	files, err := renderer.Render(ctx, pdfPath, outDir, firstPage, lastPage)
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	log.Printf("rasterized %d page(s) from %s", len(files), filepath.Base(pdfPath))

	extractor := &extract.Client{
		BaseURL: cfg.Extractor.BaseURL,
		APIKey:  cfg.Extractor.APIKey,
		Model:   cfg.Extractor.Model,
	}

	var menus []extract.Menu
	for i := 0; i < len(files); i += 2 {
		images := [][]byte{}
		for j := i; j < i+2 && j < len(files); j++ {
			b, err := os.ReadFile(files[j])
			if err != nil {
				return fmt.Errorf("read page image: %w", err)
			}
			images = append(images, b)
		}

		extracted, err := extractor.Extract(ctx, images)
		if err != nil {
			log.Printf("pair %s: %v", filepath.Base(files[i]), err)
			continue
		}
		menus = append(menus, extracted...)
		log.Printf("pair %s: %d menu(s)", filepath.Base(files[i]), len(extracted))
	}

	b, err := json.MarshalIndent(menus, "", "  ")
	if err != nil {
		return fmt.Errorf("encode menus: %w", err)
	}
	if err := os.WriteFile(output, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	log.Printf("wrote %d menu(s) to %s", len(menus), output)
	return nil
}
