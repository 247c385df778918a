package server

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/domain"
)

func positiveInt64(raw, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidRequest, name, raw)
	}
	return v, nil
}

func positiveInt(raw, name string) (int, error) {
	v, err := positiveInt64(raw, name)
	return int(v), err
}

// taxpayerYear reads the :taxpayer_id and :year path parameters.
func taxpayerYear(c *gin.Context) (int64, int, error) {
	taxpayerID, err := positiveInt64(c.Param("taxpayer_id"), "taxpayer_id")
	if err != nil {
		return 0, 0, err
	}
	year, err := positiveInt(c.Param("year"), "year")
	if err != nil {
		return 0, 0, err
	}
	return taxpayerID, year, nil
}
