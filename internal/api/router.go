package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/venue-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/favorite"
	favoriteHttp "github.com/nekogravitycat/venue-booking-backend/internal/favorite/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/venue-booking-backend/internal/file/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/metrics"
	"github.com/nekogravitycat/venue-booking-backend/internal/review"
	reviewHttp "github.com/nekogravitycat/venue-booking-backend/internal/review/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	pkgHttp "github.com/nekogravitycat/venue-booking-backend/internal/servicepackage/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/venue-booking-backend/internal/user/http"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
	venueHttp "github.com/nekogravitycat/venue-booking-backend/internal/venue/http"
)

// Config holds the dependencies required to build the router.
type Config struct {
	IsProduction bool
	ProdOrigins  []string

	Store           store.Store
	UserService     user.Service
	VenueService    venue.Service
	PackageService  servicepackage.Service
	BookingService  booking.Service
	FavoriteService favorite.Service
	ReviewService   review.Service
	FileService     file.Service
	JWTManager      *auth.JWTManager
	Metrics         *metrics.Metrics
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - Metrics: Counts requests and observes latency per route.
	r.Use(gin.Logger(), gin.Recovery(), cfg.Metrics.Middleware())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", bookingHttp.IdempotencyHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// ownerMiddleware: Further checks if the authenticated user is a venue owner.
	ownerMiddleware := RequireRole(cfg.UserService, user.RoleOwner)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	venueHandler := venueHttp.NewHandler(cfg.VenueService, cfg.Store)
	pkgHandler := pkgHttp.NewHandler(cfg.PackageService, cfg.VenueService, cfg.Store)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.VenueService, cfg.PackageService, cfg.UserService)
	favoriteHandler := favoriteHttp.NewHandler(cfg.FavoriteService)
	reviewHandler := reviewHttp.NewHandler(cfg.ReviewService, cfg.UserService)
	fileHandler := fileHttp.NewHandler(cfg.FileService)

	// venueManager: Checks the user may manage the venue named by ":id".
	venueManager := venueHandler.RequireManager()

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		venueHttp.RegisterRoutes(v1, venueHandler, authMiddleware, ownerMiddleware)
		pkgHttp.RegisterRoutes(v1, pkgHandler, authMiddleware, ownerMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, ownerMiddleware, venueManager)
		favoriteHttp.RegisterRoutes(v1, favoriteHandler, authMiddleware)
		reviewHttp.RegisterRoutes(v1, reviewHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)

		v1.POST("/venues/:id/images", authMiddleware, ownerMiddleware, venueManager, fileHandler.UploadVenueImage)
	}

	return r
}
