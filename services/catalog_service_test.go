package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"restaurant-service/access"
	apperrors "restaurant-service/common/errors"
	"restaurant-service/models"
	"restaurant-service/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	managerActor  = access.Actor{ID: 2, Role: access.Manager}
	adminActor    = access.Actor{ID: 5, Role: access.Administrator}
	crewActor     = access.Actor{ID: 3, Role: access.DeliveryCrew}
	customerActor = access.Actor{ID: 1, Role: access.Customer}
)

func ptr[T any](v T) *T { return &v }

func TestCatalogWrites_RequireManager(t *testing.T) {
	db := newMemDB()
	cats := services.NewCategoryService(&memCategoryRepo{db}, nil, zap.NewNop())
	items := services.NewMenuItemService(&memMenuItemRepo{db}, &memCategoryRepo{db}, nil, zap.NewNop())
	cat := db.addCategory("mains", "Mains")
	item := db.addItem("Pasta", "9.00", false, cat.ID)
	ctx := context.Background()

	// member of a group that is neither Manager nor Delivery Crew
	db.others[42] = true
	staff, err := access.NewResolver(&memGroups{db}).Resolve(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, access.Staff, staff.Role)

	for _, actor := range []access.Actor{customerActor, crewActor, staff} {
		_, err := cats.CreateCategory(ctx, actor, &models.CreateCategoryRequest{Slug: "x", Title: "X"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		_, err = cats.UpdateCategory(ctx, actor, cat.ID, &models.UpdateCategoryRequest{Title: ptr("Y")})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.ErrorIs(t, cats.DeleteCategory(ctx, actor, cat.ID), apperrors.ErrForbidden)

		_, err = items.CreateMenuItem(ctx, actor, &models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("3"), CategoryID: cat.ID})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		_, err = items.UpdateMenuItem(ctx, actor, item.ID, &models.UpdateMenuItemRequest{Featured: ptr(true)})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.ErrorIs(t, items.DeleteMenuItem(ctx, actor, item.ID), apperrors.ErrForbidden)
	}

	_, err = items.CreateMenuItem(ctx, adminActor, &models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("3"), CategoryID: cat.ID})
	assert.NoError(t, err)
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	db := newMemDB()
	svc := services.NewCategoryService(&memCategoryRepo{db}, nil, zap.NewNop())
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, managerActor, &models.CreateCategoryRequest{Slug: "drinks", Title: "Drinks"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.CreateCategory(ctx, managerActor, &models.CreateCategoryRequest{Slug: "drinks", Title: "Other drinks"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	other, err := svc.CreateCategory(ctx, managerActor, &models.CreateCategoryRequest{Slug: "sides", Title: "Sides"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(ctx, managerActor, other.ID, &models.UpdateCategoryRequest{Slug: ptr("drinks")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	renamed, err := svc.UpdateCategory(ctx, managerActor, created.ID, &models.UpdateCategoryRequest{Slug: ptr("drinks"), Title: ptr("Beverages")})
	require.NoError(t, err)
	assert.Equal(t, "Beverages", renamed.Title)
}

func TestCreateCategory_UniqueViolationFromStore(t *testing.T) {
	db := newMemDB()
	svc := services.NewCategoryService(&memCategoryRepo{db}, nil, zap.NewNop())
	db.failCategorySave = fmt.Errorf("insert category: %w", gorm.ErrDuplicatedKey)

	_, err := svc.CreateCategory(context.Background(), managerActor, &models.CreateCategoryRequest{Slug: "drinks", Title: "Drinks"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	db.failCategorySave = errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)")
	_, err = svc.CreateCategory(context.Background(), managerActor, &models.CreateCategoryRequest{Slug: "drinks", Title: "Drinks"})
	assert.ErrorIs(t, err, apperrors.ErrInternal, "untranslated driver errors are not classified by text")
}

func TestDeleteCategory_InUse(t *testing.T) {
	db := newMemDB()
	svc := services.NewCategoryService(&memCategoryRepo{db}, nil, zap.NewNop())
	cat := db.addCategory("mains", "Mains")
	empty := db.addCategory("empty", "Empty")
	db.addItem("Pasta", "9.00", false, cat.ID)

	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), managerActor, cat.ID), apperrors.ErrValidation)
	assert.NoError(t, svc.DeleteCategory(context.Background(), managerActor, empty.ID))
	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), managerActor, empty.ID), apperrors.ErrNotFound)
}

func TestCreateMenuItem_Validation(t *testing.T) {
	db := newMemDB()
	svc := services.NewMenuItemService(&memMenuItemRepo{db}, &memCategoryRepo{db}, nil, zap.NewNop())
	cat := db.addCategory("mains", "Mains")
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateMenuItemRequest
	}{
		{"zero price", models.CreateMenuItemRequest{Title: "Soup", Price: decimal.Zero, CategoryID: cat.ID}},
		{"negative price", models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("-1"), CategoryID: cat.ID}},
		{"too precise", models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("1.005"), CategoryID: cat.ID}},
		{"blank title", models.CreateMenuItemRequest{Title: "  ", Price: decimal.RequireFromString("1"), CategoryID: cat.ID}},
		{"unknown category", models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("1"), CategoryID: 424242}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMenuItem(ctx, managerActor, &tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	item, err := svc.CreateMenuItem(ctx, managerActor, &models.CreateMenuItemRequest{Title: "Soup", Price: decimal.RequireFromString("3.50"), CategoryID: cat.ID})
	require.NoError(t, err)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Mains", item.Category.Title)
}

func TestListMenuItems_FiltersAndCaches(t *testing.T) {
	db := newMemDB()
	menuCache := newRecordingCache()
	svc := services.NewMenuItemService(&memMenuItemRepo{db}, &memCategoryRepo{db}, menuCache, zap.NewNop())
	ctx := context.Background()

	mains := db.addCategory("mains", "Mains")
	sides := db.addCategory("sides", "Sides")
	db.addItem("Steak", "30.00", true, mains.ID)
	db.addItem("Pasta", "9.00", false, mains.ID)
	db.addItem("Fries", "4.00", true, sides.ID)

	items, total, err := svc.ListMenuItems(ctx, models.MenuItemFilter{Category: "MAINS", Ordering: "price"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Pasta", items[0].Title)
	assert.Equal(t, "Steak", items[1].Title)

	items, _, err = svc.ListMenuItems(ctx, models.MenuItemFilter{Featured: ptr(true), Ordering: "-title"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Steak", items[0].Title)

	_, _, err = svc.ListMenuItems(ctx, models.MenuItemFilter{Ordering: "popularity"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Served from cache: a row added behind the service's back is not seen.
	db.addItem("Risotto", "14.00", false, mains.ID)
	_, total, err = svc.ListMenuItems(ctx, models.MenuItemFilter{Category: "mains", Ordering: "price"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// A catalog write retires the cached pages.
	_, err = svc.CreateMenuItem(ctx, managerActor, &models.CreateMenuItemRequest{Title: "Gnocchi", Price: decimal.RequireFromString("11"), CategoryID: mains.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, menuCache.invalidations)

	_, total, err = svc.ListMenuItems(ctx, models.MenuItemFilter{Category: "mains", Ordering: "price"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestUpdateMenuItem_ChangesCategory(t *testing.T) {
	db := newMemDB()
	svc := services.NewMenuItemService(&memMenuItemRepo{db}, &memCategoryRepo{db}, nil, zap.NewNop())
	mains := db.addCategory("mains", "Mains")
	sides := db.addCategory("sides", "Sides")
	item := db.addItem("Fries", "4.00", false, mains.ID)
	ctx := context.Background()

	updated, err := svc.UpdateMenuItem(ctx, managerActor, item.ID, &models.UpdateMenuItemRequest{CategoryID: ptr(sides.ID)})
	require.NoError(t, err)
	assert.Equal(t, sides.ID, updated.CategoryID)
	assert.Equal(t, "Sides", updated.Category.Title)

	_, err = svc.UpdateMenuItem(ctx, managerActor, item.ID, &models.UpdateMenuItemRequest{CategoryID: ptr(uint(424242))})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpdateMenuItem(ctx, managerActor, 424242, &models.UpdateMenuItemRequest{Featured: ptr(true)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetMenuItem(ctx, 424242)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
