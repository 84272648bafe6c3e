package router

import (
	"context"
	"errors"
	"net/http"

	authsvc "charity-fund/internal/application/auth"
	donationsvc "charity-fund/internal/application/donations"
	projectsvc "charity-fund/internal/application/projects"
	reportsvc "charity-fund/internal/application/reports"
	usersvc "charity-fund/internal/application/user"
	"charity-fund/internal/config"
	"charity-fund/internal/infrastructure/database"
	"charity-fund/internal/infrastructure/googlesheets"
	"charity-fund/internal/infrastructure/lock"
	"charity-fund/internal/infrastructure/metrics"
	authhandler "charity-fund/internal/interfaces/handlers/auth"
	donationhandler "charity-fund/internal/interfaces/handlers/donations"
	healthhandler "charity-fund/internal/interfaces/handlers/health"
	projecthandler "charity-fund/internal/interfaces/handlers/projects"
	reporthandler "charity-fund/internal/interfaces/handlers/reports"
	userhandler "charity-fund/internal/interfaces/handlers/user"
	"charity-fund/internal/middleware"
	"charity-fund/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the long-lived resources behind the app, for startup checks and the scheduler.
type Deps struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Reports *reportsvc.Service
}

// ErrRedisRequired is returned when REDIS_URL is empty. Sessions and the
// investing lock both live in Redis.
var ErrRedisRequired = errors.New("REDIS_URL is required")

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	if cfg.RedisURL == "" {
		return nil, nil, ErrRedisRequired
	}
	db, err := database.OpenMigrated(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := middleware.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	users := &usersvc.Service{DB: db}
	if err := users.EnsureSuperuser(context.Background(), cfg.FirstSuperuserEmail, cfg.FirstSuperuserPassword); err != nil {
		return nil, nil, err
	}

	reports := &reportsvc.Service{DB: db, ShareEmail: cfg.ReportShareEmail}
	creds, err := cfg.GoogleCredentials()
	if err != nil {
		return nil, nil, err
	}
	if creds != nil {
		sheets, err := googlesheets.New(context.Background(), creds)
		if err != nil {
			return nil, nil, err
		}
		reports.Sheets = sheets
	} else {
		log.Warn().Msg("google credentials not set, report export disabled")
	}

	investLock := investingLock(rdb)

	app := fiber.New(fiber.Config{
		AppName:                 cfg.AppTitle,
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	app.Use(middleware.Tracing())
	app.Use(middleware.Session(sessionCfg, rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb, DB: db, HealthAdminKey: cfg.HealthAdminKey, Title: cfg.AppTitle}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")

	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Users:      users,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Delete("/sessions", middleware.RequireAuth(), ah.LogoutAll)

	uh := &userhandler.Handlers{Service: users}
	api.Get("/users/:user_id", middleware.RequireAuth(), uh.ViewUser)

	ph := &projecthandler.Handlers{Service: &projectsvc.Service{
		DB: db, Locker: investLock, LockTimeout: cfg.InvestingLockTimeout,
	}}
	manage := middleware.AuthorizePermission(constants.ManageProjects)
	pg := api.Group("/charity_project")
	pg.Get("/", ph.List)
	pg.Post("/", manage, ph.Create)
	pg.Patch("/:project_id", manage, ph.Update)
	pg.Delete("/:project_id", manage, ph.Delete)
	pg.Get("/:project_id/allocations", middleware.AuthorizePermission(constants.ViewAllocations), ph.Allocations)

	dh := &donationhandler.Handlers{Service: &donationsvc.Service{
		DB: db, Locker: investLock, LockTimeout: cfg.InvestingLockTimeout,
	}}
	dg := api.Group("/donation", middleware.RequireAuth())
	dg.Post("/", middleware.AuthorizePermission(constants.Donate), dh.Create)
	dg.Get("/", middleware.AuthorizePermission(constants.ViewAllDonations), dh.List)
	dg.Get("/my", middleware.AuthorizePermission(constants.ViewOwnDonations), dh.Mine)

	rh := &reporthandler.Handlers{Service: reports}
	rg := api.Group("/google", middleware.AuthorizePermission(constants.ExportReports))
	rg.Post("/", rh.Export)
	rg.Get("/", rh.History)

	return app, &Deps{DB: db, Rdb: rdb, Reports: reports}, nil
}

// investingLock is shared by both pools: a project and a donation created
// together must not read overlapping backlogs, even on different instances.
func investingLock(rdb *redis.Client) lock.Locker {
	return &lock.RedisLocker{Rdb: rdb}
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
