package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/types"
)

func TestGetIDParam(t *testing.T) {
	tests := []struct {
		value   string
		want    uint
		wantErr error
	}{
		{"42", 42, nil},
		{"", 0, ErrMissingParam},
		{"0", 0, ErrInvalidParam},
		{"-1", 0, ErrInvalidParam},
		{"abc", 0, ErrInvalidParam},
		{"99999999999", 0, ErrInvalidParam},
	}

	for _, tt := range tests {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Params = gin.Params{{Key: "id", Value: tt.value}}

		got, err := GetIDParam(ctx, "id")
		if got != tt.want || !errors.Is(err, tt.wantErr) {
			t.Errorf("GetIDParam(%q) = %d, %v; want %d, %v", tt.value, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestGetCurrentUser(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/", nil)

	if _, err := GetCurrentUser(ctx); err == nil {
		t.Fatal("expected error without identity")
	}

	ctx.Set(types.ContextIdentityKey, auth.Identity{UserID: 4})
	id, err := GetCurrentUserID(ctx)
	if err != nil || id != 4 {
		t.Fatalf("GetCurrentUserID() = %d, %v", id, err)
	}

	ctx.Request = ctx.Request.WithContext(auth.WithIdentity(ctx.Request.Context(), auth.Identity{UserID: 5}))
	if id, _ := GetCurrentUserID(ctx); id != 5 {
		t.Errorf("request context identity not preferred: %d", id)
	}
}
