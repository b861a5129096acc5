package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

func newCostumeFixture() (*memDB, *CostumeService, *memImageStore) {
	db := newMemDB()
	images := newMemImageStore()
	return db, NewCostumeService(fakeCostumeRepo{db}, images, zap.NewNop()), images
}

func TestCostumeLifecycle(t *testing.T) {
	_, svc, images := newCostumeFixture()
	ctx := context.Background()

	created, err := svc.CreateCostume(ctx,
		CostumeInput{Title: "Лиса", Price: 1500, Available: true},
		ImageUpload{Filename: "fox.jpg", Content: strings.NewReader("jpeg")},
	)
	require.NoError(t, err)
	assert.Nil(t, created.Description)
	assert.True(t, strings.HasPrefix(created.ImageURL, "/uploads/"))
	assert.Len(t, images.files, 1)

	list, err := svc.ListCostumes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := svc.UpdateCostume(ctx, created.ID,
		CostumeInput{Title: "Лиса", Description: "рыжая", Price: 1700, Available: false}, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, "рыжая", *updated.Description)
	assert.False(t, updated.Available)

	replaced, err := svc.UpdateCostume(ctx, created.ID,
		CostumeInput{Title: "Лиса", Price: 1700}, &ImageUpload{Filename: "fox2.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.NotEqual(t, created.ImageURL, replaced.ImageURL)
	assert.Len(t, images.files, 1, "old image removed")

	require.NoError(t, svc.DeleteCostume(ctx, created.ID))
	assert.Empty(t, images.files)

	_, err = svc.GetCostume(ctx, created.ID)
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeNotFound, code)
	err = svc.DeleteCostume(ctx, created.ID)
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeNotFound, code)
}

func TestCreateCostume_ValidatesBeforeStoring(t *testing.T) {
	_, svc, images := newCostumeFixture()
	ctx := context.Background()

	_, err := svc.CreateCostume(ctx, CostumeInput{Title: "", Price: 10},
		ImageUpload{Filename: "a.png", Content: strings.NewReader("x")})
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	_, err = svc.CreateCostume(ctx, CostumeInput{Title: "Bear", Price: -1},
		ImageUpload{Filename: "a.png", Content: strings.NewReader("x")})
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	_, err = svc.CreateCostume(ctx, CostumeInput{Title: "Bear", Price: 10},
		ImageUpload{Filename: "a.bmp", Content: strings.NewReader("x")})
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	assert.Empty(t, images.files)
}

func TestDeleteCostume_CascadesReservations(t *testing.T) {
	f := newBookingFixture()
	costumes := NewCostumeService(fakeCostumeRepo{f.db}, newMemImageStore(), zap.NewNop())
	ctx := context.Background()
	id := f.db.addCostume("Fox", true)

	_, err := f.reserve(t, id, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{
		Title:     "Fitting",
		CostumeID: &id,
		DateFrom:  strPtr("2024-06-10"),
		DateTo:    strPtr("2024-06-12"),
	})
	require.NoError(t, err)
	require.NoError(t, costumes.DeleteCostume(ctx, id))

	mine, err := f.service.GetMyReservations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	orders, err := f.service.GetMyOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].CostumeID, "orders outlive the costume with the link cleared")
	assert.Equal(t, "Fitting", orders[0].Title)
}
