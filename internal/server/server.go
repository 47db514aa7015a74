package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tvnrapp/relationship-os/internal/assist"
	assistdomain "github.com/tvnrapp/relationship-os/internal/assist/domain"
	"github.com/tvnrapp/relationship-os/internal/authorization"
	"github.com/tvnrapp/relationship-os/internal/chat"
	chatdomain "github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/internal/checkout"
	checkoutdomain "github.com/tvnrapp/relationship-os/internal/checkout/domain"
	"github.com/tvnrapp/relationship-os/internal/config"
	"github.com/tvnrapp/relationship-os/internal/dashboard"
	dashboarddomain "github.com/tvnrapp/relationship-os/internal/dashboard/domain"
	"github.com/tvnrapp/relationship-os/internal/identity"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"github.com/tvnrapp/relationship-os/internal/invite"
	invitedomain "github.com/tvnrapp/relationship-os/internal/invite/domain"
	"github.com/tvnrapp/relationship-os/internal/observability"
	obsmiddleware "github.com/tvnrapp/relationship-os/internal/observability/logger"
	obsmetrics "github.com/tvnrapp/relationship-os/internal/observability/metrics"
	obstracing "github.com/tvnrapp/relationship-os/internal/observability/tracing"
	"github.com/tvnrapp/relationship-os/internal/providers/pdf"
	"github.com/tvnrapp/relationship-os/internal/quote"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	"github.com/tvnrapp/relationship-os/internal/ratelimit"
	"github.com/tvnrapp/relationship-os/internal/subscription"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	identity.Module,
	invite.Module,
	quote.Module,
	subscription.Module,
	chat.Module,
	dashboard.Module,
	assist.Module,
	checkout.Module,
	ratelimit.Module,
	pdf.Module,
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
	r.Use(httpMetrics.GinMiddleware())
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
	engine          *gin.Engine
	cfg             config.Config
	tokens          *token.Manager
	identitySvc     identitydomain.Service
	inviteSvc       invitedomain.Service
	quoteSvc        quotedomain.Service
	subscriptionSvc subscriptiondomain.Service
	chatSvc         chatdomain.Service
	dashboardSvc    dashboarddomain.Service
	assistSvc       assistdomain.Service
	checkoutSvc     checkoutdomain.Service
	authzSvc        authorization.Service
	pdfProvider     pdf.Provider
	assistLimiter   *ratelimit.AssistLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Tokens          *token.Manager
	IdentitySvc     identitydomain.Service
	InviteSvc       invitedomain.Service
	QuoteSvc        quotedomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ChatSvc         chatdomain.Service
	DashboardSvc    dashboarddomain.Service
	AssistSvc       assistdomain.Service
	CheckoutSvc     checkoutdomain.Service
	AuthzSvc        authorization.Service
	PDFProvider     pdf.Provider
	AssistLimiter   *ratelimit.AssistLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		tokens:          p.Tokens,
		identitySvc:     p.IdentitySvc,
		inviteSvc:       p.InviteSvc,
		quoteSvc:        p.QuoteSvc,
		subscriptionSvc: p.SubscriptionSvc,
		chatSvc:         p.ChatSvc,
		dashboardSvc:    p.DashboardSvc,
		assistSvc:       p.AssistSvc,
		checkoutSvc:     p.CheckoutSvc,
		authzSvc:        p.AuthzSvc,
		pdfProvider:     p.PDFProvider,
		assistLimiter:   p.AssistLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerInviteRoutes()
	svc.registerQuoteRoutes()
	svc.registerSubscriptionRoutes()
	svc.registerDashboardRoutes()
	svc.registerChatRoutes()
	svc.registerAssistRoutes()
	svc.registerPaymentRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/sso", s.SSOExchange)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerInviteRoutes() {
	invites := s.engine.Group("/invites")

	invites.GET("/validate", s.ValidateInvite)
	invites.POST("/accept", s.AcceptInvite)

	// Older clients still call the original route names.
	invites.GET("/lookup", s.ValidateInvite)
	invites.POST("/consume", s.AcceptInvite)

	invites.POST("",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectInvite, authorization.ActionInviteManage),
		s.CreateInvite)
	invites.GET("/pending",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectInvite, authorization.ActionInviteManage),
		s.ListPendingInvites)
}

func (s *Server) registerQuoteRoutes() {
	quotes := s.engine.Group("/quotes", s.AuthRequired())

	quotes.POST("",
		s.RequireCapability(authorization.ObjectQuote, authorization.ActionQuoteCreate),
		s.CreateQuote)
	quotes.GET("/mine",
		s.RequireRole(identitydomain.RoleCustomer),
		s.ListMyQuotes)
	quotes.GET("/:id",
		s.RequireCapability(authorization.ObjectQuote, authorization.ActionQuoteView),
		s.GetQuote)
	quotes.GET("/:id/pdf",
		s.RequireCapability(authorization.ObjectQuote, authorization.ActionQuoteView),
		s.GetQuotePDF)
	quotes.POST("/:id/status",
		s.RequireCapability(authorization.ObjectQuote, authorization.ActionQuoteDecide),
		s.SetQuoteStatus)
}

func (s *Server) registerSubscriptionRoutes() {
	subs := s.engine.Group("/subscriptions",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectSubscription, authorization.ActionSubscriptionManage))

	subs.GET("/mine", s.ListMySubscriptions)
	subs.POST("/:id/cancel", s.CancelSubscription)
	subs.POST("/:id/pause", s.PauseSubscription)
	subs.POST("/:id/resume", s.ResumeSubscription)
}

func (s *Server) registerDashboardRoutes() {
	seller := s.engine.Group("/seller",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectDashboard, authorization.ActionDashboardSeller))

	seller.GET("/dashboard", s.SellerDashboard)
	seller.GET("/quotes", s.ListSellerQuotes)
	seller.GET("/subscriptions", s.ListSellerSubscriptions)
	seller.GET("/customers", s.ListSellerCustomers)
	seller.GET("/customers/:id", s.GetSellerCustomer)

	customer := s.engine.Group("/customer",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectDashboard, authorization.ActionDashboardCustomer))

	customer.GET("/dashboard", s.CustomerDashboard)
}

func (s *Server) registerChatRoutes() {
	chatGroup := s.engine.Group("/chat",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectChat, authorization.ActionChatUse))

	chatGroup.GET("/:otherUserId", s.ListChatMessages)
	chatGroup.POST("/:otherUserId", s.SendChatMessage)
}

func (s *Server) registerAssistRoutes() {
	ai := s.engine.Group("/ai",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectAssist, authorization.ActionAssistUse),
		s.AssistRateLimit())

	ai.GET("/quote-summary/:id", s.QuoteSummary)
	ai.GET("/insights/subscriptions", s.SubscriptionInsights)
}

func (s *Server) registerPaymentRoutes() {
	payments := s.engine.Group("/payments",
		s.AuthRequired(),
		s.RequireCapability(authorization.ObjectCheckout, authorization.ActionCheckoutCreate))

	payments.POST("/checkout/:quoteId", s.CreateCheckout)
}
