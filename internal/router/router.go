package router

import (
	"time"

	"github.com/Gotsutoki/car-management-website/internal/config"
	"github.com/Gotsutoki/car-management-website/internal/handler"
	"github.com/Gotsutoki/car-management-website/internal/infra"
	"github.com/Gotsutoki/car-management-website/internal/middleware"
	"github.com/Gotsutoki/car-management-website/internal/repository"
	"github.com/Gotsutoki/car-management-website/internal/service"
	"github.com/Gotsutoki/car-management-website/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	carRepo := repository.NewCarRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, rdb, cfg)
	carSvc := service.NewCarService(carRepo, saleRepo, movementRepo, rdb)
	customerSvc := service.NewCustomerService(customerRepo, saleRepo)
	saleSvc := service.NewSaleService(saleRepo, carRepo, customerRepo, movementRepo, dispatcher, cfg.LowStockThreshold)
	reportSvc := service.NewReportService(reportRepo, rdb, cfg.LowStockThreshold)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	carsH := handler.NewCarsHandler(carSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	movementsH := handler.NewMovementsHandler(movementRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, rdb)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)

		// Roles: admin, staff, customer — declared per-endpoint.
		// Car, customer, and sale reads are open to every authenticated role;
		// sale writes need staff or admin, inventory and customer writes need
		// admin. Reports and the movement audit stay staff/admin.
		v1.GET("/cars", carsH.List)
		v1.GET("/cars/:id", carsH.GetByID)
		v1.PATCH("/cars/:id/stock", middleware.RequireRole("admin", "staff"), carsH.AdjustStock)
		cars := v1.Group("/cars", middleware.RequireRole("admin"))
		{
			cars.POST("", carsH.Create)
			cars.PUT("/:id", carsH.Update)
			cars.DELETE("/:id", carsH.Delete)
		}

		v1.GET("/customers", customersH.List)
		v1.GET("/customers/:id", customersH.GetByID)
		customers := v1.Group("/customers", middleware.RequireRole("admin"))
		{
			customers.POST("", customersH.Create)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Delete)
		}

		v1.GET("/sales", salesH.List)
		v1.GET("/sales/:id", salesH.GetByID)
		sales := v1.Group("/sales", middleware.RequireRole("admin", "staff"))
		{
			sales.POST("", salesH.Create)
			sales.PUT("/:id", salesH.Update)
			sales.DELETE("/:id", salesH.Delete)
		}

		reports := v1.Group("/reports", middleware.RequireRole("admin", "staff"))
		{
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/expensive", reportsH.Expensive)
			reports.GET("/statistics", reportsH.Statistics)
			reports.GET("/average-price", reportsH.AveragePrice)
		}

		v1.GET("/movements", middleware.RequireRole("admin", "staff"), movementsH.List)

		v1.POST("/users", middleware.RequireRole("admin"), authH.CreateUser)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
