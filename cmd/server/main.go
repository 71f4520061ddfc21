package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nivkatz/tenants_backend/internal/application"
	"github.com/nivkatz/tenants_backend/internal/config"
	"github.com/nivkatz/tenants_backend/internal/domain"
	"github.com/nivkatz/tenants_backend/internal/email"
	"github.com/nivkatz/tenants_backend/internal/infrastructure/repository"
	handlers "github.com/nivkatz/tenants_backend/internal/interfaces/http"
	"github.com/nivkatz/tenants_backend/internal/scheduler"
	services "github.com/nivkatz/tenants_backend/internal/service"
	"github.com/nivkatz/tenants_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Error loading config: " + err.Error())
	}

	log := logger.New(cfg.LogLevel)

	db, err := config.NewDatabase(cfg.GetDBConnString(), log)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	catalog := domain.NewCatalog(cfg.Buildings)
	store := repository.NewPostgresStore(db.DB, cfg.LockTimeout)

	validator := application.NewValidator(application.ValidationRules{
		NameMinLength:      cfg.NameMinLength,
		NameMaxLength:      cfg.NameMaxLength,
		PhoneMinLength:     cfg.PhoneMinLength,
		PhoneMaxLength:     cfg.PhoneMaxLength,
		MaxWhatsAppMembers: cfg.MaxWhatsAppMembers,
		MaxPalGateMembers:  cfg.MaxPalGateMembers,
	}, catalog)

	// Email client
	var emailClient *email.Client
	if cfg.SMTPHost != "" {
		emailClient, err = email.NewClient(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.SMTPFromName,
			cfg.SMTPFromEmail,
		)
		if err != nil {
			log.Warnf("Email client initialization failed: %v", err)
			emailClient = nil
		}
	}
	notifier := email.NewNotifier(emailClient, cfg.CommitteeEmail)

	// Registry
	tenantService := application.NewTenantService(store, validator)
	occupancyService := application.NewOccupancyService(store, catalog)
	tenantHandler := handlers.NewTenantHandler(tenantService, occupancyService, notifier, log)
	buildingHandler := handlers.NewBuildingHandler(catalog, occupancyService)
	accessHandler := handlers.NewAccessHandler(occupancyService)

	// Backups
	var backupService *services.BackupService
	if cfg.S3BucketName != "" {
		backupService, err = services.NewBackupService(store, catalog, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.Warnf("Backup service initialization failed: %v", err)
			backupService = nil
		}
	}
	backupHandler := handlers.NewBackupHandler(backupService, log)

	if backupService != nil {
		backupScheduler := scheduler.NewBackupScheduler(backupService, log)
		backupScheduler.Start()
		defer backupScheduler.Stop()
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
		ExposeHeaders:    "Content-Length",
		MaxAge:           86400,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	buildings := api.Group("/buildings")
	buildings.Get("/", buildingHandler.ListBuildings)
	buildings.Get("/:number", buildingHandler.GetBuilding)

	tenants := api.Group("/tenants")
	tenants.Post("/", tenantHandler.CreateTenant)
	tenants.Get("/", tenantHandler.ListTenants)
	tenants.Get("/search", tenantHandler.SearchTenants)
	tenants.Get("/:building/:apartment", tenantHandler.GetTenant)
	tenants.Put("/:building/:apartment", tenantHandler.UpdateTenant)
	tenants.Post("/:building/:apartment/end", tenantHandler.EndTenancy)
	tenants.Get("/:building/:apartment/history", tenantHandler.GetHistory)

	access := api.Group("/access")
	access.Get("/whatsapp", accessHandler.WhatsAppContacts)
	access.Get("/palgate", accessHandler.GateAccessList)

	api.Post("/backup", backupHandler.TriggerBackup)

	log.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
