package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

func newProfileFixture(t *testing.T) (*ProfileService, *memImageStore, int64) {
	t.Helper()
	db := newMemDB()
	u, err := userDomain.NewUser("anna@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, fakeUserRepo{db}.Save(context.Background(), u))

	images := newMemImageStore()
	return NewProfileService(fakeUserRepo{db}, fakeProfileRepo{db}, images, zap.NewNop()), images, u.ID()
}

func TestGetProfile_WithoutProfileRow(t *testing.T) {
	svc, _, userID := newProfileFixture(t)

	p, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", p.Email)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Age)
	assert.Nil(t, p.PhotoURL)
}

func TestUpdateProfile_MergesFields(t *testing.T) {
	svc, _, userID := newProfileFixture(t)
	ctx := context.Background()
	name, phone, age := "Анна", "+7 900 000-00-00", 30

	p, err := svc.UpdateProfile(ctx, userID, UpdateProfileRequest{Name: &name, Age: &age})
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, name, *p.Name)
	assert.Equal(t, 30, *p.Age)

	p, err = svc.UpdateProfile(ctx, userID, UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, *p.Name, "omitted fields are kept")
	assert.Equal(t, phone, *p.Phone)

	blank := "  "
	p, err = svc.UpdateProfile(ctx, userID, UpdateProfileRequest{Name: &blank})
	require.NoError(t, err)
	assert.Nil(t, p.Name)

	bad := 121
	_, err = svc.UpdateProfile(ctx, userID, UpdateProfileRequest{Age: &bad})
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)
}

func TestUploadPhoto_ReplacesPrevious(t *testing.T) {
	svc, images, userID := newProfileFixture(t)
	ctx := context.Background()

	first, err := svc.UploadPhoto(ctx, userID, "me.PNG", strings.NewReader("one"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.PhotoURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(first.PhotoURL, ".png"))

	second, err := svc.UploadPhoto(ctx, userID, "me.jpg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.Len(t, images.files, 1)

	p, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.PhotoURL, *p.PhotoURL)

	_, err = svc.UploadPhoto(ctx, userID, "me.gif", strings.NewReader("three"))
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)
}

func TestUploadPhoto_StorageFailure(t *testing.T) {
	svc, images, userID := newProfileFixture(t)
	images.saveErr = errBoom

	_, err := svc.UploadPhoto(context.Background(), userID, "me.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, errBoom)
}
