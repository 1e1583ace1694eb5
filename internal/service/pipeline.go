package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"menuscan/internal/extract"
	"menuscan/internal/model"
	"menuscan/internal/normalize"
	"menuscan/internal/raster"
	"menuscan/internal/repository"
	"menuscan/internal/storage"
)

// dishImagePrefix is the object-storage key prefix under which per-menu dish
// images are published.
const dishImagePrefix = "dish-images"

// PipelineService runs the full extraction pipeline for one document:
// rasterize the PDF page range, extract menus from each page pair, publish
// dish images and persist menus, nutrition and deduplicated recipes.
type PipelineService interface {
	// ProcessDocument processes the PDF at pdfPath for the given document.
	// Page pairs fail independently; their diagnostics are aggregated into
	// the document's error message. Only a rasterization failure is fatal:
	// the document is marked error and the failure is returned. On any other
	// outcome the document ends in status done with processed_at set.
	ProcessDocument(ctx context.Context, documentID, pdfPath string) error
}

type pipelineService struct {
	renderer  raster.Renderer
	extractor extract.Extractor
	store     storage.Storage
	docs      repository.DocumentRepository
	menus     repository.MenuRepository
	recipes   repository.RecipeRepository

	imagesDir string
	firstPage int
	lastPage  int
}

// NewPipelineService constructs a PipelineService. imagesDir is the base
// directory for per-document page images; firstPage/lastPage bound the
// rasterized range.
func NewPipelineService(
	renderer raster.Renderer,
	extractor extract.Extractor,
	store storage.Storage,
	docs repository.DocumentRepository,
	menus repository.MenuRepository,
	recipes repository.RecipeRepository,
	imagesDir string,
	firstPage, lastPage int,
) PipelineService {
	if firstPage <= 0 {
		firstPage = raster.DefaultFirstPage
	}
	if lastPage <= 0 {
		lastPage = raster.DefaultLastPage
	}
	return &pipelineService{
		renderer:  renderer,
		extractor: extractor,
		store:     store,
		docs:      docs,
		menus:     menus,
		recipes:   recipes,
		imagesDir: imagesDir,
		firstPage: firstPage,
		lastPage:  lastPage,
	}
}

func (s *pipelineService) ProcessDocument(ctx context.Context, documentID, pdfPath string) error {
	outDir := filepath.Join(s.imagesDir, "doc_"+documentID)

	files, err := s.renderer.Render(ctx, pdfPath, outDir, s.firstPage, s.lastPage)
	if err != nil {
		msg := fmt.Sprintf("rasterization failed: %v", err)
		if errors.Is(err, raster.ErrNoPages) {
			msg = "no page images were produced from the PDF"
		}
		if uerr := s.docs.UpdateStatus(ctx, documentID, model.StatusError, &msg); uerr != nil {
			return fmt.Errorf("rasterize: %w (status update also failed: %v)", err, uerr)
		}
		return fmt.Errorf("rasterize: %w", err)
	}

	menuIndex := 0
	var pairErrors []string

	for i := 0; i < len(files); i += 2 {
		first := files[i]
		second := ""
		if i+1 < len(files) {
			second = files[i+1]
		}

		processed, err := s.processPair(ctx, documentID, first, second, menuIndex)
		menuIndex += processed
		if err != nil {
			secondName := ""
			if second != "" {
				secondName = filepath.Base(second)
			}
			pairErrors = append(pairErrors, fmt.Sprintf("pair %s/%s: %v",
				filepath.Base(first), secondName, err))
		}
	}

	var errorMessage *string
	if len(pairErrors) > 0 {
		shown := pairErrors
		if len(shown) > 2 {
			shown = shown[:2]
		}
		msg := fmt.Sprintf("%d pair(s) failed. %s", len(pairErrors), strings.Join(shown, "; "))
		errorMessage = &msg
	}

	if err := s.docs.MarkDone(ctx, documentID, errorMessage, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// processPair extracts and persists the menus of one page pair. second is
// empty for a trailing singleton. Returns the number of menus persisted
// before any failure so the caller keeps the menu index monotonic across
// pairs.
func (s *pipelineService) processPair(ctx context.Context, documentID, first, second string, menuIndex int) (int, error) {
	firstBytes, err := os.ReadFile(first)
	if err != nil {
		return 0, fmt.Errorf("read page image: %w", err)
	}
	images := [][]byte{firstBytes}
	if second != "" {
		secondBytes, err := os.ReadFile(second)
		if err != nil {
			return 0, fmt.Errorf("read page image: %w", err)
		}
		images = append(images, secondBytes)
	}

	menus, err := s.extractor.Extract(ctx, images)
	if err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}

	processed := 0
	for _, m := range menus {
		if err := s.persistMenu(ctx, documentID, menuIndex+processed, firstBytes, m); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// persistMenu publishes the dish image and writes the menu row, its nutrition
// facts and its course recipes. Image publishing is best effort; a failed
// upload leaves the menu without an image URL.
func (s *pipelineService) persistMenu(ctx context.Context, documentID string, menuIndex int, pageImage []byte, m extract.Menu) error {
	imageURL := s.publishDishImage(ctx, documentID, menuIndex, pageImage)

	menu, err := s.menus.Create(ctx, &model.Menu{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Index:      menuIndex,
		Name:       m.Name,
		Fruit:      m.Fruit,
		ImageURL:   imageURL,
	})
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}

	n := m.NutritionalInfo
	if err := s.menus.CreateNutrition(ctx, &model.Nutrition{
		MenuID:     menu.ID,
		EnergyKcal: normalize.Num(n.Energy),
		ProteinG:   normalize.Num(n.Protein),
		CarbsG:     normalize.Num(n.Carbohydrates),
		IronMg:     normalize.Num(n.Iron),
		VitaminAUg: normalize.Num(n.VitaminA),
		ZincMg:     normalize.Num(n.Zinc),
	}); err != nil {
		return fmt.Errorf("create nutrition: %w", err)
	}

	courses := []struct {
		course *extract.Course
		typ    model.CourseType
	}{
		{m.Starter, model.CourseStarter},
		{m.MainCourse, model.CourseMain},
		{m.Drink, model.CourseDrink},
	}
	for _, c := range courses {
		if c.course == nil {
			continue
		}
		if err := s.linkCourseRecipe(ctx, menu.ID, c.course, c.typ); err != nil {
			return err
		}
	}
	return nil
}

// linkCourseRecipe resolves the recipe for one course slot through the
// deduplicating repository and ties it to the menu.
func (s *pipelineService) linkCourseRecipe(ctx context.Context, menuID string, course *extract.Course, typ model.CourseType) error {
	ingredients := normalize.JoinList(course.Ingredients)
	preparation := normalize.JoinList(course.Preparation)

	recipe, err := s.recipes.GetOrCreate(ctx, &model.Recipe{
		ID:              uuid.New().String(),
		Name:            course.Name,
		Type:            typ,
		IngredientsText: nilIfEmpty(ingredients),
		PreparationText: nilIfEmpty(preparation),
	})
	if err != nil {
		return fmt.Errorf("resolve %s recipe: %w", typ, err)
	}

	if err := s.menus.LinkRecipe(ctx, &model.MenuRecipe{
		MenuID:   menuID,
		RecipeID: recipe.ID,
		Type:     typ,
	}); err != nil {
		return fmt.Errorf("link %s recipe: %w", typ, err)
	}
	return nil
}

// publishDishImage uploads the pair's first page image as the menu's dish
// image and returns its public URL. Returns empty on failure; the menu is
// stored without an image rather than failing the pair.
func (s *pipelineService) publishDishImage(ctx context.Context, documentID string, menuIndex int, image []byte) string {
	key := fmt.Sprintf("%s/%s/%d.png", dishImagePrefix, documentID, menuIndex)
	_, err := s.store.Put(ctx, key, bytes.NewReader(image), storage.PutObjectOptions{
		Size:        int64(len(image)),
		ContentType: "image/png",
	})
	if err != nil {
		return ""
	}
	return s.store.PublicURL(key)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
