package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/api"
	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
	"github.com/nekogravitycat/venue-booking-backend/internal/catalog"
	"github.com/nekogravitycat/venue-booking-backend/internal/favorite"
	"github.com/nekogravitycat/venue-booking-backend/internal/file"
	"github.com/nekogravitycat/venue-booking-backend/internal/guard"
	"github.com/nekogravitycat/venue-booking-backend/internal/metrics"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/venue-booking-backend/internal/review"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/user"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    []string
	Store          store.Store
	Blobs          storage.Storage
	Catalog        *catalog.Catalog
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	MaxUploadBytes int64
	Location       *time.Location
	Logger         *slog.Logger
	// Now overrides the clock used for booking buckets and timestamps.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Metrics    *metrics.Metrics

	Users    user.Service
	Venues   venue.Service
	Packages servicepackage.Service
	Bookings booking.Service

	logger *slog.Logger
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	m := metrics.New()

	// User Module
	userService := user.NewService(cfg.Store, user.NewRepository(), passwordHasher, logger)

	// Venue Module
	venueService := venue.NewService(cfg.Store, venue.NewRepository(), cfg.Catalog.Venues, guard.VenueChecker, logger, m)

	// Service Package Module
	packageService := servicepackage.NewService(cfg.Store, servicepackage.NewRepository(), cfg.Catalog.Packages, venueService, guard.PackageChecker, logger, m)

	// Booking Module
	bookingService := booking.NewService(booking.Deps{
		Store:    cfg.Store,
		Repo:     booking.NewRepository(),
		Venues:   venueService,
		Packages: packageService,
		Logger:   logger,
		Metrics:  m,
		Now:      cfg.Now,
		Location: cfg.Location,
	})

	// Favorite, Review and File Modules
	favoriteService := favorite.NewService(cfg.Store, venueService)
	reviewService := review.NewService(cfg.Store, venueService)
	fileService := file.NewService(cfg.Store, file.NewRepository(), cfg.Blobs, venueService, cfg.MaxUploadBytes, logger)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Store:           cfg.Store,
		UserService:     userService,
		VenueService:    venueService,
		PackageService:  packageService,
		BookingService:  bookingService,
		FavoriteService: favoriteService,
		ReviewService:   reviewService,
		FileService:     fileService,
		JWTManager:      jwtManager,
		Metrics:         m,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Metrics:    m,
		Users:      userService,
		Venues:     venueService,
		Packages:   packageService,
		Bookings:   bookingService,
		logger:     logger,
	}
}

// ProvisionSeedOwners creates the accounts seed venues point at, so each seed venue
// can be managed by its owner. Existing accounts are left untouched.
func (c *Container) ProvisionSeedOwners(ctx context.Context, owners []catalog.Owner, password string) error {
	for _, o := range owners {
		u, created, err := c.Users.Provision(ctx, user.ProvisionRequest{
			ID:       o.ID,
			Email:    o.Email,
			Password: password,
			Name:     o.Name,
			Role:     user.RoleOwner,
		})
		if err != nil {
			return fmt.Errorf("provision seed owner %s: %w", o.ID, err)
		}
		if !created && u.Role != user.RoleOwner {
			c.logger.WarnContext(ctx, "seed owner id belongs to a non-owner account", "user_id", u.ID, "role", u.Role)
		}
	}
	return nil
}
