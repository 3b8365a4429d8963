package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/interfaces/http/dto"
	"github.com/locallift/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setAuthContext simulates an authenticated request without a real token
func setAuthContext(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(middleware.JWTUserIDKey, userID.String())
	c.Set(middleware.JWTRoleKey, role)
}

func TestGetUserID(t *testing.T) {
	t.Run("returns the ID from context", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		want := uuid.New()
		setAuthContext(c, want, "customer")

		got, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("errors when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		_, err := getUserID(c)
		assert.Error(t, err)
	})
}

func TestRoleHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	setAuthContext(c, uuid.New(), "business")

	assert.True(t, isVendor(c))
	assert.False(t, isAdmin(c))
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestPaginated(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	page := &shared.Paginated[string]{
		Items:      []string{"a", "b"},
		Total:      12,
		Page:       2,
		PageSize:   2,
		TotalPages: 6,
	}
	Paginated(h, c, page)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalPages)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found sentinel",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "forbidden sentinel",
			err:        shared.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "insufficient stock is a validation failure",
			err:        shared.ErrInsufficientStock,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INSUFFICIENT_STOCK",
		},
		{
			name:       "bad status transition is a validation failure",
			err:        shared.NewDomainError("INVALID_STATE", "Shipped orders cannot be cancelled"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_STATE",
		},
		{
			name:       "custom domain code",
			err:        shared.NewDomainError("COUPON_EXHAUSTED", "Coupon redemption limit reached"),
			wantStatus: http.StatusConflict,
			wantCode:   "COUPON_EXHAUSTED",
		},
		{
			name:       "unknown domain code falls back to 500",
			err:        shared.NewDomainError("SOMETHING_ODD", "???"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "SOMETHING_ODD",
		},
		{
			name:       "plain error hides detail",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
