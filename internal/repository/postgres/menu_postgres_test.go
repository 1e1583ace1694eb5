package postgres

import (
	"context"
	"testing"

	"menuscan/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMenuPostgres(db)
	ctx := context.Background()

	fruit := "mandarina"
	menu := &model.Menu{
		ID:         "menu-id",
		DocumentID: "doc-id",
		Index:      2,
		Name:       "Seco de carne con frejoles",
		Fruit:      &fruit,
		ImageURL:   "https://store.test/dish-images/doc-id/2.png",
	}

	rows := sqlmock.NewRows([]string{"id", "document_id", "menu_index", "name", "fruit", "image_url"}).
		AddRow(menu.ID, menu.DocumentID, menu.Index, menu.Name, fruit, menu.ImageURL)

	mock.ExpectQuery("INSERT INTO menus").
		WithArgs(menu.ID, menu.DocumentID, menu.Index, menu.Name, &fruit, menu.ImageURL).
		WillReturnRows(rows)

	got, err := repo.Create(ctx, menu)

	require.NoError(t, err)
	assert.Equal(t, menu.ID, got.ID)
	assert.Equal(t, 2, got.Index)
	require.NotNil(t, got.Fruit)
	assert.Equal(t, fruit, *got.Fruit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuPostgres_CreateNutrition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMenuPostgres(db)
	ctx := context.Background()

	energy := "580"
	protein := "28"
	n := &model.Nutrition{
		MenuID:     "menu-id",
		EnergyKcal: &energy,
		ProteinG:   &protein,
		// Remaining values were unparsable and stay NULL.
	}

	mock.ExpectExec("INSERT INTO menu_nutrition").
		WithArgs("menu-id", &energy, &protein, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CreateNutrition(ctx, n)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuPostgres_LinkRecipe(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMenuPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO menu_recipes").
		WithArgs("menu-id", "recipe-id", string(model.CourseDrink)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.LinkRecipe(ctx, &model.MenuRecipe{
		MenuID:   "menu-id",
		RecipeID: "recipe-id",
		Type:     model.CourseDrink,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuPostgres_ListByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMenuPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "document_id", "menu_index", "name", "fruit", "image_url"}).
		AddRow("m1", "doc-id", 0, "Menu uno", nil, "").
		AddRow("m2", "doc-id", 1, "Menu dos", "platano", "https://store.test/dish-images/doc-id/1.png")

	mock.ExpectQuery("SELECT (.+) FROM menus").
		WithArgs("doc-id").
		WillReturnRows(rows)

	menus, err := repo.ListByDocument(ctx, "doc-id")

	require.NoError(t, err)
	require.Len(t, menus, 2)
	assert.Nil(t, menus[0].Fruit)
	assert.Empty(t, menus[0].ImageURL)
	require.NotNil(t, menus[1].Fruit)
	assert.Equal(t, "platano", *menus[1].Fruit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
