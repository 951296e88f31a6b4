package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/veridocs/veridocs/internal/activity"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	"github.com/veridocs/veridocs/internal/billing"
	billingdomain "github.com/veridocs/veridocs/internal/billing/domain"
	"github.com/veridocs/veridocs/internal/config"
	"github.com/veridocs/veridocs/internal/document"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"github.com/veridocs/veridocs/internal/extraction"
	extractiondomain "github.com/veridocs/veridocs/internal/extraction/domain"
	"github.com/veridocs/veridocs/internal/order"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"github.com/veridocs/veridocs/internal/organization"
	"github.com/veridocs/veridocs/internal/storage"
	"github.com/veridocs/veridocs/internal/transform"
	transformdomain "github.com/veridocs/veridocs/internal/transform/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	storage.Module,
	organization.Module,
	billing.Module,
	activity.Module,
	document.Module,
	order.Module,
	transform.Module,
	extraction.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	store         storage.Store
	documentSvc   documentdomain.Service
	orderSvc      orderdomain.Service
	billingSvc    billingdomain.Service
	activitySvc   activitydomain.Service
	transformSvc  transformdomain.Service
	extractionSvc extractiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Store         storage.Store
	DocumentSvc   documentdomain.Service
	OrderSvc      orderdomain.Service
	BillingSvc    billingdomain.Service
	ActivitySvc   activitydomain.Service
	TransformSvc  transformdomain.Service
	ExtractionSvc extractiondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		store:         p.Store,
		documentSvc:   p.DocumentSvc,
		orderSvc:      p.OrderSvc,
		billingSvc:    p.BillingSvc,
		activitySvc:   p.ActivitySvc,
		transformSvc:  p.TransformSvc,
		extractionSvc: p.ExtractionSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.OrgContext())

	// -------- Documents --------
	api.POST("/documents", s.CreateDocument)
	api.GET("/documents", s.ListDocuments)
	api.GET("/documents/deleted", s.ListDeletedDocuments)
	api.GET("/documents/:id", s.GetDocument)
	api.GET("/documents/:id/activities", s.ListDocumentActivities)
	api.PATCH("/documents/:id/category", s.UpdateDocumentCategory)
	api.PATCH("/documents/:id/approval", s.UpdateDocumentApproval)

	// -------- Workflow --------
	api.POST("/documents/:id/assign", s.AssignDocument)
	api.POST("/documents/:id/release", s.ReleaseDocument)
	api.POST("/documents/:id/submit", s.SubmitDocumentForReview)
	api.POST("/documents/:id/qa", s.ApplyQAOutcome)

	// -------- Lifecycle --------
	api.DELETE("/documents/:id", s.SoftDeleteDocument)
	api.POST("/documents/:id/restore", s.RestoreDocument)
	api.DELETE("/documents/:id/purge", s.PurgeDocument)

	// -------- Transform & Extraction --------
	api.POST("/documents/merge", s.MergeDocuments)
	api.POST("/documents/:id/split", s.SplitDocument)
	api.POST("/documents/:id/extract", s.ExtractDocument)

	// -------- Orders --------
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/review", s.ListOrdersForReview)
	api.GET("/orders/completed", s.ListCompletedOrders)
	api.GET("/orders/:id", s.GetOrder)

	// -------- Billing --------
	api.POST("/billing/subscription", s.AssignSubscription)
}
