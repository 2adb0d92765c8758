package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (auth.Identity, error) {
	if identity, ok := auth.IdentityFrom(ctx.Request.Context()); ok {
		return identity, nil
	}

	value, exists := ctx.Get(types.ContextIdentityKey)

	if !exists {
		return auth.Identity{}, fmt.Errorf("User not authenticated")
	}

	identity, ok := value.(auth.Identity)

	if !ok {
		return auth.Identity{}, fmt.Errorf("Invalid identity type in context")
	}

	return identity, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.UserID, nil
}
