package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

func TestError_MapsDomainCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("wrapped: %w", domain.NewNotFoundError("Order", "1")), http.StatusNotFound, "NOT_FOUND"},
		{domain.NewConflictError("taken"), http.StatusConflict, "CONFLICT"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var env Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Success)
		assert.Equal(t, tc.code, env.Error.Code)
	}
}

func TestError_HidesInternalMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}
