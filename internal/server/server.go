// Package server exposes the declaration engine over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/events"
	"github.com/mtax/declaration-engine/internal/logger"
	"github.com/mtax/declaration-engine/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Repository is everything the HTTP layer reads and writes.
type Repository interface {
	calculation.TransactionQuery
	calculation.SettingsLookup
	Transactions(ctx context.Context, taxpayerID int64, year int) ([]domain.Transaction, error)
	SaveTaxSetting(ctx context.Context, setting domain.TaxSetting) error
	SaveDeclaration(ctx context.Context, d domain.Declaration) (*domain.Declaration, error)
	ListDeclarations(ctx context.Context, taxpayerID int64, year int) ([]domain.Declaration, error)
	Declaration(ctx context.Context, id int64) (*domain.Declaration, error)
}

// pinger is implemented by repositories that can report their health.
type pinger interface {
	Ping(ctx context.Context) error
}

// DefaultsFunc supplies the fallback setting used when a request sets use_defaults.
type DefaultsFunc func(year int) (*domain.TaxSetting, error)

// Params groups the collaborators of a Server. Publisher, Metrics and Defaults are optional.
type Params struct {
	Repo      Repository
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Defaults  DefaultsFunc
}

type Server struct {
	repo      Repository
	calc      *calculation.Calculator
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	defaults  DefaultsFunc
}

func New(p Params) *Server {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	calc := calculation.NewCalculator(p.Repo, p.Repo)
	calc.SetLogger(log.Named("calculation").Sugar())
	if p.Metrics != nil {
		calc.Recorder = p.Metrics
	}

	return &Server{
		repo:      p.Repo,
		calc:      calc,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		log:       log,
		defaults:  p.Defaults,
	}
}

// Engine builds the gin engine with middleware and routes.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", s.Health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	decl := r.Group("/declarations")
	decl.POST("/calculate", s.CalculateDeclaration)
	decl.POST("", s.SaveDeclaration)
	decl.GET("/:id", s.GetDeclaration)
	decl.GET("/list/:taxpayer_id/:year", s.ListDeclarations)
	decl.GET("/special-deductions/:taxpayer_id/:year", s.SuggestDeductions)

	r.GET("/tax-settings/:year", s.GetTaxSetting)
	r.POST("/tax-settings", s.SaveTaxSetting)

	r.GET("/summary", s.Summary)
}

func (s *Server) Health(c *gin.Context) {
	if p, ok := s.repo.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
