package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/domain"
)

func (s *Server) GetTaxSetting(c *gin.Context) {
	year, err := positiveInt(c.Param("year"), "year")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	setting, err := s.repo.TaxSetting(c.Request.Context(), year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) SaveTaxSetting(c *gin.Context) {
	var setting domain.TaxSetting
	if err := c.ShouldBindJSON(&setting); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}
	if err := s.repo.SaveTaxSetting(c.Request.Context(), setting); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) Summary(c *gin.Context) {
	taxpayerID, err := positiveInt64(c.Query("taxpayer_id"), "taxpayer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	year, err := positiveInt(c.Query("year"), "year")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	txs, err := s.repo.Transactions(c.Request.Context(), taxpayerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculation.Summarize(txs))
}
