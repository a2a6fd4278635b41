package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelspay/reelspay-backend/internal/config"
	"github.com/reelspay/reelspay-backend/internal/handler"
	"github.com/reelspay/reelspay-backend/internal/media"
	appmw "github.com/reelspay/reelspay-backend/internal/middleware"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/reelspay/reelspay-backend/internal/revenue"
	"github.com/reelspay/reelspay-backend/internal/rewardtoken"
	"github.com/reelspay/reelspay-backend/internal/service"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators the HTTP surface is built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Auth   *appmw.AuthMiddleware
	Media  media.Host
	// Window is the shared per-address view window; nil leaves throttling to the database.
	Window service.WindowReserver
	Split  revenue.Table
	Logger *slog.Logger
	// Now overrides the service clock in tests.
	Now       func() time.Time
	SHA       string
	BuildTime string
}

type Server struct {
	e *echo.Echo
}

const (
	defaultRequestTimeout = 15 * time.Second
	// covers the largest longform video plus its thumbnail and the form fields
	uploadBodyLimit = "110M"
)

func New(d Deps) *Server {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = cfg.HTTPReadTimeout
	e.Server.WriteTimeout = cfg.HTTPWriteTimeout
	e.Server.IdleTimeout = cfg.HTTPIdleTimeout

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	uploadTimeout := requestTimeout + 2*cfg.MediaTimeout
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(appmw.RequestContext)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Forwarded-For"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))
	e.Use(requestDeadline(requestTimeout, "/uploads"))

	opts := []service.Option{service.WithLogger(d.Logger), service.WithClock(d.Now)}

	profileRepo := repository.NewProfileRepository(d.DB)
	videoRepo := repository.NewVideoRepository(d.DB)
	viewRepo := repository.NewViewRepository(d.DB)
	ledgerRepo := repository.NewLedgerRepository(d.DB)
	payoutRepo := repository.NewPayoutRepository(d.DB)
	rewardRepo := repository.NewRewardRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)

	notifySvc := service.NewNotificationService(notificationRepo, opts...)
	profileSvc := service.NewProfileService(profileRepo, videoRepo, opts...)
	ledgerSvc := service.NewLedgerService(ledgerRepo, profileRepo, rewardRepo, opts...)
	viewSvc := service.NewViewService(viewRepo, videoRepo, profileRepo, d.Window, service.ViewLimits{
		RateLimit:   cfg.ViewRateLimit,
		RateWindow:  cfg.ViewRateWindow,
		DedupWindow: cfg.ViewDedupWindow,
	}, opts...)
	issuer := rewardtoken.NewIssuer(cfg.RewardTokenSecret, cfg.RewardTokenTTL)
	if d.Now != nil {
		issuer = issuer.WithClock(d.Now)
	}
	rewardSvc := service.NewRewardService(d.DB, rewardRepo, videoRepo, profileRepo, ledgerRepo, viewRepo, notifySvc, issuer,
		service.RewardConfig{Table: d.Split, MinWatch: cfg.AdMinWatch, Bucket: cfg.RewardBucket}, opts...)
	payoutSvc := service.NewPayoutService(d.DB, payoutRepo, ledgerRepo, profileRepo, notifySvc,
		service.PayoutPolicy{MinCoins: cfg.PayoutMinCoins, CoinsToPaise: cfg.CoinsToPaise}, opts...)
	uploadSvc := service.NewUploadService(profileRepo, videoRepo, d.Media, opts...)

	viewHandler := handler.NewViewHandler(viewSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	payoutHandler := handler.NewPayoutHandler(payoutSvc)
	profileHandler := handler.NewProfileHandler(profileSvc, ledgerSvc)
	videoHandler := handler.NewVideoHandler(profileSvc, uploadSvc, viewSvc)
	notificationHandler := handler.NewNotificationHandler(notifySvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    d.SHA,
			"build_time": d.BuildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store:               middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.APIRatePerSecond)),
		IdentifierExtractor: appmw.RateLimitIdentifier,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, handler.NewErrorResponse("rate_limited", "rate limit"))
		},
	})

	auth := d.Auth
	e.POST("/views", viewHandler.Record, limiter, auth.OptionalAuth)
	e.POST("/ad-sessions", rewardHandler.StartSession, limiter, auth.OptionalAuth)
	e.POST("/ad-sessions/:id/events", rewardHandler.Event, limiter, auth.OptionalAuth)
	e.POST("/rewards", rewardHandler.Claim, limiter, auth.OptionalAuth)
	e.POST("/payouts", payoutHandler.Request, limiter, auth.RequireAuth)
	e.POST("/creator-status", profileHandler.BecomeCreator, auth.RequireAuth)
	e.POST("/uploads", videoHandler.Upload,
		middleware.BodyLimit(uploadBodyLimit), requestDeadline(uploadTimeout), limiter, auth.RequireAuth)

	e.GET("/videos", videoHandler.List)
	e.GET("/videos/:id", videoHandler.Get)
	e.POST("/videos/:id/like", videoHandler.Like, auth.RequireAuth)
	e.DELETE("/videos/:id/like", videoHandler.Unlike, auth.RequireAuth)

	me := e.Group("/me", auth.RequireAuth)
	me.GET("", profileHandler.Me)
	me.GET("/transactions", profileHandler.Transactions)
	me.GET("/payouts", payoutHandler.ListMine)
	me.GET("/notifications", notificationHandler.List)
	me.POST("/notifications/read", notificationHandler.MarkRead)

	admin := e.Group("/admin", auth.RequireAuth, appmw.RequireAdmin(profileSvc))
	admin.GET("/payouts", payoutHandler.ListByStatus)
	admin.POST("/payouts/:id/resolve", payoutHandler.Resolve)
	admin.GET("/ledger/:profileId/audit", ledgerHandler.Audit)
	admin.POST("/videos/:id/recount", videoHandler.Recount)

	return &Server{e: e}
}

// requestDeadline bounds the request context so every storage and upstream call made
// while serving it gives up once the deadline passes. Paths in skip are bounded elsewhere.
func requestDeadline(timeout time.Duration, skip ...string) echo.MiddlewareFunc {
	return middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool {
			return slices.Contains(skip, c.Path())
		},
		Timeout: timeout,
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return handler.WriteTimeout(c, err)
			}
			return err
		},
	})
}

// allowOrigin admits local development origins plus the configured list.
func allowOrigin(allowed []string) func(origin string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		return slices.ContainsFunc(allowed, func(a string) bool {
			return strings.EqualFold(strings.TrimRight(strings.TrimSpace(a), "/"), low)
		}), nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
