package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingParam = errors.New("path parameter not found")
	ErrInvalidParam = errors.New("path parameter is not a valid id")
)

// GetIDParam parses a positive numeric path parameter.
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, ErrMissingParam
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, ErrInvalidParam
	}

	return uint(id), nil
}
