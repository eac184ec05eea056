package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/adiah-react/oxis-sales/internal/handler"
	"github.com/adiah-react/oxis-sales/internal/middleware"
	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/repository"
	"github.com/adiah-react/oxis-sales/internal/service"
	"github.com/adiah-react/oxis-sales/internal/ws"
	"github.com/adiah-react/oxis-sales/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Product{}, &model.Person{}, &model.Sale{}, &model.SaleItem{}, &model.User{})

	// 3. Seed default admin and the walk-in customer
	checkoutCfg := loadCheckoutConfig()
	seedDefaults(db, checkoutCfg.DefaultPersonID)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	personRepo := repository.NewPersonRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(productRepo, db, wsHub)
	checkoutService := service.NewCheckoutService(productRepo, personRepo, saleRepo, db, wsHub, checkoutCfg)
	personService := service.NewPersonService(personRepo)
	analyticsService := service.NewAnalyticsService(saleRepo, productRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)

	invHandler := handler.NewInventoryHandler(invService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	personHandler := handler.NewPersonHandler(personService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Oxis Sales v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/logout", middleware.RequireAuth(userRepo), authHandler.Logout)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	admin := middleware.RequireRole(string(model.RoleAdmin))

	// Catalog
	protected.Get("/products", invHandler.GetProducts)
	protected.Post("/products", admin, invHandler.CreateProduct)
	protected.Put("/products/:id", admin, invHandler.UpdateProduct)
	protected.Delete("/products/:id", admin, invHandler.DeleteProduct)
	protected.Post("/products/:id/restock", invHandler.RestockProduct)
	protected.Get("/inventory/report", invHandler.GetStockReport)

	// Checkout + ledger
	protected.Post("/checkout", checkoutHandler.Commit)
	protected.Get("/sales", checkoutHandler.GetSales)
	protected.Get("/sales/:id", checkoutHandler.GetSale)

	// Analytics
	protected.Get("/analytics/stats", analyticsHandler.GetDashboardStats)
	protected.Get("/analytics/item-sales", analyticsHandler.GetItemSales)
	protected.Get("/analytics/top-products", analyticsHandler.GetTopProducts)

	// Persons (customers)
	protected.Get("/persons", personHandler.GetPersons)
	protected.Get("/persons/:id", personHandler.GetPerson)
	protected.Post("/persons", admin, personHandler.CreatePerson)
	protected.Put("/persons/:id", admin, personHandler.UpdatePerson)
	protected.Delete("/persons/:id", admin, personHandler.DeletePerson)
	protected.Post("/persons/:id/balance", personHandler.AdjustBalance)

	// Operator accounts
	protected.Get("/users", admin, userHandler.GetUsers)
	protected.Get("/users/:id", admin, userHandler.GetUser)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)
	protected.Delete("/users/:id", admin, userHandler.DeleteUser)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// loadCheckoutConfig resolves the business knobs from the environment.
// TAX_RATE is a fraction (0.08 for 8%); DEFAULT_PERSON_ID, when set,
// attributes anonymous sales to the configured walk-in customer.
func loadCheckoutConfig() service.CheckoutConfig {
	cfg := service.CheckoutConfig{}

	if raw := os.Getenv("TAX_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			log.Printf("Warning: invalid TAX_RATE %q, using 0", raw)
		} else {
			cfg.TaxRate = rate
		}
	}

	if raw := os.Getenv("DEFAULT_PERSON_ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Printf("Warning: invalid DEFAULT_PERSON_ID %q, sales stay anonymous", raw)
		} else {
			cfg.DefaultPersonID = &id
		}
	}

	return cfg
}

// seedDefaults creates the default admin account and, when configured, the
// walk-in customer record that anonymous sales are attributed to.
func seedDefaults(db *gorm.DB, walkInID *uuid.UUID) {
	userRepo := repository.NewUserRepo(db)

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}

	if _, err := userRepo.FindByEmail(adminEmail); err != nil {
		adminPassword := os.Getenv("ADMIN_PASSWORD")
		if adminPassword == "" {
			adminPassword = "admin123"
		}

		admin := &model.User{
			Email:    adminEmail,
			FullName: "Administrator",
			Role:     model.RoleAdmin,
			IsActive: true,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword(adminPassword); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Printf("Admin user created: %s (admin)", adminEmail)
		}
	}

	if walkInID != nil {
		personRepo := repository.NewPersonRepo(db)
		if _, err := personRepo.FindByID(*walkInID); err != nil {
			walkIn := &model.Person{
				Name: "Walk-in Customer",
				Type: model.PersonOther,
			}
			walkIn.ID = *walkInID
			walkIn.CreatedBy = "system"
			walkIn.UpdatedBy = "system"

			if err := personRepo.Create(walkIn); err != nil {
				log.Printf("Warning: Failed to create walk-in customer: %v", err)
			} else {
				log.Printf("Walk-in customer created: %s", walkInID)
			}
		}
	}
}
