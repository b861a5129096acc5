package costume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

func TestNewCostume_Validation(t *testing.T) {
	_, err := NewCostume("  ", "", 100, true, "a.jpg")
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeValidation, code)

	_, err = NewCostume("Fox", "", -1, true, "a.jpg")
	assert.Error(t, err)

	_, err = NewCostume("Fox", "", 100, true, "")
	assert.Error(t, err)

	c, err := NewCostume(" Fox ", " red ", 1500, true, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Fox", c.Title())
	assert.Equal(t, "red", c.Description())
	assert.Equal(t, int64(0), c.ID())
}

func TestCostume_ReplaceImage(t *testing.T) {
	c := ReconstructCostume(3, "Fox", "", 100, true, "old.png")
	old := c.ReplaceImage("new.png")
	assert.Equal(t, "old.png", old)
	assert.Equal(t, "new.png", c.ImageFilename())
}
