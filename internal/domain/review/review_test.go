package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	tests := []struct {
		name      string
		productID uuid.UUID
		userID    uuid.UUID
		rating    int
		wantErr   bool
	}{
		{"valid", uuid.New(), uuid.New(), 4, false},
		{"minimum rating", uuid.New(), uuid.New(), 1, false},
		{"maximum rating", uuid.New(), uuid.New(), 5, false},
		{"rating too low", uuid.New(), uuid.New(), 0, true},
		{"rating too high", uuid.New(), uuid.New(), 6, true},
		{"empty product", uuid.Nil, uuid.New(), 3, true},
		{"empty user", uuid.New(), uuid.Nil, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReview(tt.productID, tt.userID, "Jordan", tt.rating, "solid product")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rating, r.Rating)
		})
	}
}

func TestReview_Edit(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), "Jordan", 3, "okay")
	require.NoError(t, err)

	require.NoError(t, r.Edit(5, "grew on me"))
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "grew on me", r.Comment)

	assert.Error(t, r.Edit(0, "bad rating"))
}
