package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/logger"
	"go.uber.org/zap"
)

type calculateRequest struct {
	domain.CalculateRequest
	UseDefaults bool `json:"use_defaults"`
}

func (s *Server) CalculateDeclaration(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	var fallback *domain.TaxSetting
	if req.UseDefaults && s.defaults != nil {
		setting, err := s.defaults(req.Year)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		fallback = setting
	}

	decl, err := s.calc.CalculateWithFallback(c.Request.Context(), req.CalculateRequest, fallback)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, decl)
}

func (s *Server) SaveDeclaration(c *gin.Context) {
	var req domain.Declaration
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}
	// ids and timestamps are assigned by the store
	req.ID = 0
	req.CreatedAt = nil

	saved, err := s.repo.SaveDeclaration(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.DeclarationSaved(saved.Status)
	}
	s.publishSaved(c, saved)

	c.JSON(http.StatusCreated, saved)
}

// publishSaved emits declaration.saved. A failed publish is logged and counted
// but does not fail the request, the declaration is already stored.
func (s *Server) publishSaved(c *gin.Context, d *domain.Declaration) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishDeclarationSaved(c.Request.Context(), d)
	if s.metrics != nil {
		s.metrics.EventPublished(err)
	}
	if err != nil {
		logger.FromGin(c).Warn("declaration event not published",
			zap.Int64("declaration_id", d.ID), zap.Error(err))
	}
}

func (s *Server) GetDeclaration(c *gin.Context) {
	id, err := positiveInt64(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	decl, err := s.repo.Declaration(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, decl)
}

func (s *Server) ListDeclarations(c *gin.Context) {
	taxpayerID, year, err := taxpayerYear(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	list, err := s.repo.ListDeclarations(c.Request.Context(), taxpayerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) SuggestDeductions(c *gin.Context) {
	taxpayerID, year, err := taxpayerYear(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	suggestions, err := s.calc.SuggestDeductions(c.Request.Context(), taxpayerID, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []domain.SpecialDeduction{}
	}
	c.JSON(http.StatusOK, suggestions)
}
