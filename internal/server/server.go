package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/nalotext/smsmargin/internal/billing"
	billingdomain "github.com/nalotext/smsmargin/internal/billing/domain"
	"github.com/nalotext/smsmargin/internal/config"
	"github.com/nalotext/smsmargin/internal/insights"
	insightsdomain "github.com/nalotext/smsmargin/internal/insights/domain"
	"github.com/nalotext/smsmargin/internal/markuprule"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
	"github.com/nalotext/smsmargin/internal/observability"
	obsmiddleware "github.com/nalotext/smsmargin/internal/observability/logger"
	obsmetrics "github.com/nalotext/smsmargin/internal/observability/metrics"
	obstracing "github.com/nalotext/smsmargin/internal/observability/tracing"
	"github.com/nalotext/smsmargin/internal/pricing"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
	"github.com/nalotext/smsmargin/internal/profitledger"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
	"github.com/nalotext/smsmargin/internal/providers/upstream"
	"github.com/nalotext/smsmargin/internal/ratelimit"
	"github.com/nalotext/smsmargin/internal/wallet"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	markuprule.Module,
	pricing.Module,
	wallet.Module,
	profitledger.Module,
	insights.Module,
	billing.Module,
	upstream.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	ruleSvc     markupruledomain.Service
	pricingSvc  pricingdomain.Service
	walletSvc   walletdomain.Service
	ledgerSvc   ledgerdomain.Service
	insightsSvc insightsdomain.Service
	billingSvc  billingdomain.Service
	bulkLimiter *ratelimit.BulkLimiter
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	RuleSvc     markupruledomain.Service
	PricingSvc  pricingdomain.Service
	WalletSvc   walletdomain.Service
	LedgerSvc   ledgerdomain.Service
	InsightsSvc insightsdomain.Service
	BillingSvc  billingdomain.Service
	BulkLimiter *ratelimit.BulkLimiter `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics    `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		ruleSvc:     p.RuleSvc,
		pricingSvc:  p.PricingSvc,
		walletSvc:   p.WalletSvc,
		ledgerSvc:   p.LedgerSvc,
		insightsSvc: p.InsightsSvc,
		billingSvc:  p.BillingSvc,
		bulkLimiter: p.BulkLimiter,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerPricingRoutes()
	svc.registerBalanceRoutes()
	svc.registerSMSRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPricingRoutes() {
	pricing := s.engine.Group("/pricing", s.ResellerRequired())

	// -------- Rules --------
	pricing.GET("/rules", s.ListMarkupRules)
	pricing.POST("/rules", s.CreateMarkupRule)
	pricing.GET("/rules/:id", s.GetMarkupRuleByID)
	pricing.PUT("/rules/:id", s.UpdateMarkupRule)
	pricing.DELETE("/rules/:id", s.DeleteMarkupRule)

	// -------- Tiers (volume-banded rules) --------
	pricing.GET("/tiers", s.ListPricingTiers)
	pricing.POST("/tiers", s.CreatePricingTier)

	// -------- Calculation --------
	pricing.POST("/calculate", s.CalculatePricing)
	pricing.POST("/bulk-calculate", s.BulkCalculateRateLimit(), s.BulkCalculatePricing)

	// -------- Analytics --------
	pricing.GET("/analytics", s.GetProfitAnalytics)
	pricing.GET("/recommendations", s.GetPricingRecommendations)
}

func (s *Server) registerBalanceRoutes() {
	balance := s.engine.Group("/balance", s.ResellerRequired())

	balance.GET("", s.GetBalance)
	balance.GET("/transactions", s.ListWalletTransactions)
	balance.POST("/distribute", s.DistributeBalance)
	balance.POST("/auto-distribute", s.AutoDistributeBalance)
	balance.PUT("/auto-recharge", s.UpsertAutoRecharge)
}

func (s *Server) registerSMSRoutes() {
	sms := s.engine.Group("/sms", s.ResellerRequired())

	sms.POST("/charge", s.ChargeSMS)
}
