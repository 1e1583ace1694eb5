package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"menuscan/internal/model"
	"menuscan/internal/normalize"
	"menuscan/internal/repository"
	"menuscan/internal/storage"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("document not found")
	ErrReaderNil          = errors.New("reader is nil")
	ErrNotPDF             = errors.New("file is not a PDF")
	ErrFileTooLarge       = errors.New("file exceeds the 50MB limit")
	ErrDepartmentRequired = errors.New("department id is required")
	ErrDepartmentNotFound = errors.New("department not found")
)

// MaxUploadSize bounds accepted PDF uploads.
const MaxUploadSize = 50 << 20

// pdfStoragePrefix is the object-storage key prefix for source PDFs.
const pdfStoragePrefix = "pdfs"

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// MenuCourseDetail is one resolved course of a menu with its recipe text
// re-split into list entries.
type MenuCourseDetail struct {
	Type        model.CourseType `json:"type"`
	Name        string           `json:"name"`
	Ingredients []string         `json:"ingredients"`
	Preparation []string         `json:"preparation"`
}

// MenuDetail is the read model for one extracted menu: the menu row, its
// nutrition facts and its resolved course recipes.
type MenuDetail struct {
	Menu      model.Menu         `json:"menu"`
	Nutrition *model.Nutrition   `json:"nutrition,omitempty"`
	Courses   []MenuCourseDetail `json:"courses"`
}

// DocumentService defines the use cases for uploaded lunch-menu documents.
type DocumentService interface {
	// Upload validates and stores an incoming PDF, runs the extraction
	// pipeline against it and keeps the source file in object storage on
	// success. A fatal pipeline failure rolls the document back entirely:
	// the row is deleted and any published dish images are removed.
	Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, departmentID string) (*model.Document, error)

	// List returns documents using limit/offset and a total count,
	// optionally filtered by department.
	List(ctx context.Context, limit, offset int, departmentID string) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document, its stored PDF and its dish images.
	// Extracted menus cascade at the database level; deduplicated recipes
	// are shared across documents and survive.
	Delete(ctx context.Context, id string) error

	// Menus returns the extracted menus of a document with nutrition and
	// resolved recipes.
	Menus(ctx context.Context, documentID string) ([]MenuDetail, error)

	// ProcessStored re-runs the extraction pipeline against a document's
	// stored PDF, downloading it from object storage when the local copy is
	// gone.
	ProcessStored(ctx context.Context, id string) error

	// Departments lists the selectable departments.
	Departments(ctx context.Context) ([]model.Department, error)
}

type documentService struct {
	store       storage.Storage
	docs        repository.DocumentRepository
	menus       repository.MenuRepository
	recipes     repository.RecipeRepository
	departments repository.DepartmentRepository
	pipeline    PipelineService

	uploadDir string
}

// NewDocumentService constructs a DocumentService. uploadDir is where
// successfully processed PDFs are kept locally.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	menus repository.MenuRepository,
	recipes repository.RecipeRepository,
	departments repository.DepartmentRepository,
	pipeline PipelineService,
	uploadDir string,
) DocumentService {
	if uploadDir == "" {
		uploadDir = filepath.Join("uploads", "pdfs")
	}
	return &documentService{
		store:       store,
		docs:        docs,
		menus:       menus,
		recipes:     recipes,
		departments: departments,
		pipeline:    pipeline,
		uploadDir:   uploadDir,
	}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, departmentID string) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if contentType != "application/pdf" {
		return nil, ErrNotPDF
	}
	if size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if departmentID == "" {
		return nil, ErrDepartmentRequired
	}

	dept, err := s.departments.FindByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("find department: %w", err)
	}

	genName := generateFilename(originalFilename)

	// The rasterizer shells out to pdftoppm, so the upload needs a path on
	// disk before the pipeline can run.
	tmp, err := os.CreateTemp("", "menuscan-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tmp.Name()
	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	doc := &model.Document{
		ID:           uuid.New().String(),
		DepartmentID: dept.ID,
		OriginalName: originalFilename,
		Filename:     genName,
		FilePath:     tempPath,
		Size:         written,
		Status:       model.StatusProcessing,
		UploadedAt:   time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if err := s.pipeline.ProcessDocument(ctx, stored.ID, tempPath); err != nil {
		// Rollback: the document never existed. Dish images published
		// before the fatal failure are removed best effort.
		if delErr := s.docs.Delete(ctx, stored.ID); delErr != nil {
			os.Remove(tempPath)
			return nil, fmt.Errorf("processing failed: %v; rollback delete failed: %v", err, delErr)
		}
		_ = s.store.RemovePrefix(ctx, dishImagePrefix+"/"+stored.ID+"/")
		os.Remove(tempPath)
		return nil, fmt.Errorf("processing failed: %w", err)
	}

	finalPath, storagePath := s.storeSourcePDF(ctx, stored.ID, dept.Slug, genName, tempPath)
	if err := s.docs.SetStoredFile(ctx, stored.ID, finalPath, storagePath); err != nil {
		return nil, fmt.Errorf("record stored file: %w", err)
	}
	stored.FilePath = finalPath
	stored.StoragePath = storagePath
	return stored, nil
}

// storeSourcePDF moves the processed PDF into the upload directory and
// uploads a copy to object storage. Either step failing is tolerated; the
// document then keeps whichever paths succeeded.
func (s *documentService) storeSourcePDF(ctx context.Context, docID, deptSlug, filename, tempPath string) (finalPath, storagePath string) {
	finalPath = tempPath
	dir := filepath.Join(s.uploadDir, deptSlug)
	if err := os.MkdirAll(dir, 0o755); err == nil {
		dst := filepath.Join(dir, filename)
		if err := os.Rename(tempPath, dst); err == nil {
			finalPath = dst
		}
	}

	f, err := os.Open(finalPath)
	if err != nil {
		return finalPath, ""
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return finalPath, ""
	}

	key := fmt.Sprintf("%s/%s/%s_%s", pdfStoragePrefix, deptSlug, docID, filename)
	if _, err := s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        info.Size(),
		ContentType: "application/pdf",
	}); err != nil {
		return finalPath, ""
	}
	return finalPath, key
}

func (s *documentService) List(ctx context.Context, limit, offset int, departmentID string) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.docs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, DepartmentID: departmentID})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if doc.StoragePath != "" {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			return fmt.Errorf("delete stored pdf: %w", err)
		}
	}
	if err := s.store.RemovePrefix(ctx, dishImagePrefix+"/"+doc.ID+"/"); err != nil {
		return fmt.Errorf("delete dish images: %w", err)
	}
	// The local copy may already be gone.
	if doc.FilePath != "" {
		_ = os.Remove(doc.FilePath)
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) Menus(ctx context.Context, documentID string) ([]MenuDetail, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.docs.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	menus, err := s.menus.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	details := make([]MenuDetail, 0, len(menus))
	for _, m := range menus {
		nutrition, err := s.menus.FindNutrition(ctx, m.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		courses, err := s.recipes.ListByMenu(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		courseDetails := make([]MenuCourseDetail, 0, len(courses))
		for _, c := range courses {
			courseDetails = append(courseDetails, MenuCourseDetail{
				Type:        c.Type,
				Name:        c.Recipe.Name,
				Ingredients: splitList(c.Recipe.IngredientsText),
				Preparation: splitList(c.Recipe.PreparationText),
			})
		}

		details = append(details, MenuDetail{Menu: m, Nutrition: nutrition, Courses: courseDetails})
	}
	return details, nil
}

func (s *documentService) ProcessStored(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	pdfPath := doc.FilePath
	cleanup := func() {}
	if _, statErr := os.Stat(pdfPath); statErr != nil {
		if doc.StoragePath == "" {
			return fmt.Errorf("document has no readable local file and no storage path")
		}
		pdfPath, cleanup, err = s.downloadPDF(ctx, doc.StoragePath)
		if err != nil {
			return err
		}
	}
	defer cleanup()

	if err := s.docs.UpdateStatus(ctx, doc.ID, model.StatusProcessing, nil); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return s.pipeline.ProcessDocument(ctx, doc.ID, pdfPath)
}

// downloadPDF fetches a stored PDF into a temp file and returns its path with
// a cleanup func.
func (s *documentService) downloadPDF(ctx context.Context, storagePath string) (string, func(), error) {
	rc, _, err := s.store.Get(ctx, storagePath)
	if err != nil {
		return "", nil, fmt.Errorf("download stored pdf: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "menuscan-reprocess-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	_, err = io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}

func (s *documentService) Departments(ctx context.Context) ([]model.Department, error) {
	return s.departments.List(ctx)
}

// generateFilename derives a unique stored filename from the original name:
// the sanitized base, a short random suffix and the original extension.
func generateFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	base = unsafeFilenameRe.ReplaceAllString(base, "_")
	if len(base) > 50 {
		base = base[:50]
	}
	return fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext)
}

// splitList reverses the stored "; " join back into list entries.
func splitList(text *string) []string {
	if text == nil || *text == "" {
		return nil
	}
	parts := strings.Split(*text, normalize.ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
