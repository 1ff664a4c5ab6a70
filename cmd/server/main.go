package main

import (
	"log"

	"taskpilot/internal/api"
	"taskpilot/internal/catalog"
	"taskpilot/internal/config"
	"taskpilot/internal/database"
	"taskpilot/internal/metrics"
	"taskpilot/internal/models"
	"taskpilot/internal/recommend"
	"taskpilot/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB client (optional - for persistence)
	var mongoClient *database.MongoDBClient
	if cfg.MongoDB.URI != "" || cfg.MongoDB.Host != "" {
		log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
			cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
		mongoClient, err = database.NewMongoDBClient(cfg.MongoDB)
		if err != nil {
			log.Printf("WARNING: Failed to connect to MongoDB (persistence disabled): %v", err)
			mongoClient = nil
		} else {
			log.Printf("Successfully connected to MongoDB")
			defer mongoClient.Close()
		}
	} else {
		log.Printf("MongoDB not configured (Host and URI are empty), persistence disabled")
	}

	// Initialize InfluxDB metrics (optional)
	var influxService *metrics.InfluxService
	if cfg.InfluxDB.URL != "" {
		influxService, err = metrics.NewInfluxService(
			cfg.InfluxDB.URL,
			cfg.InfluxDB.Token,
			cfg.InfluxDB.Org,
			cfg.InfluxDB.Bucket,
		)
		if err != nil {
			log.Printf("WARNING: Failed to connect to InfluxDB (metrics disabled): %v", err)
			influxService = nil
		} else {
			defer influxService.Close()
		}
	} else {
		log.Printf("InfluxDB not configured, execution metrics disabled")
	}

	// Load the model catalog
	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.SchemaPath)
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}

	// Performance tracker, seeded from persisted aggregates when available
	var store recommend.PerformanceStore
	if mongoClient != nil {
		store = mongoClient
	}
	tracker := recommend.NewTracker(cfg.Engine.HistoryLimit, store)
	if mongoClient != nil {
		aggregates, err := mongoClient.LoadModelPerformance()
		if err != nil {
			log.Printf("WARNING: Failed to load persisted model performance: %v", err)
		} else if len(aggregates) > 0 {
			tracker.Seed(aggregates)
			log.Printf("Restored performance aggregates for %d models", len(aggregates))
		}
	}

	engine := recommend.NewEngine(cat, tracker)

	// Task runner: OpenAI-backed for language tasks when configured,
	// simulated otherwise.
	var runner services.TaskRunner = services.NewDefaultSimulatedRunner()
	if cfg.OpenAI.APIKey != "" {
		runner = services.NewLLMRunner(cfg.OpenAI, runner)
		log.Printf("OpenAI runner enabled (model: %s)", cfg.OpenAI.Model)
	} else {
		log.Printf("OpenAI API key not configured, using simulated task runner")
	}

	// Initialize services
	taskService := services.NewTaskService(mongoClient)
	intentService := services.NewIntentService()
	executor := services.NewExecutor(engine, tracker, taskService, runner, influxService)
	jwtService := services.NewJWTService(cfg.JWT.Secret)
	agentTools := services.NewAgentTools(cat, engine, tracker, intentService, taskService, executor)

	// Report delivery (requires SendGrid)
	var reportService *services.ReportService
	if cfg.Email.APIKey != "" {
		emailService := services.NewEmailService(cfg.Email)
		pdfService := services.NewPDFService()
		reportService = services.NewReportService(tracker, pdfService, emailService)
	} else {
		log.Printf("SendGrid API key not configured, performance report emails disabled")
	}

	// Cron scheduler for recurring workflows
	scheduleService := services.NewScheduleService(executor, reportService, mongoClient)
	scheduleService.Start()
	defer scheduleService.Stop()
	if err := scheduleService.LoadAndScheduleAll(); err != nil {
		log.Printf("WARNING: Failed to load persisted schedules: %v", err)
	}

	// Initialize handlers
	defaultContext := models.ExecutionContext{
		MaxMemoryMB:              cfg.Engine.MaxMemoryMB,
		BatteryOptimizationLevel: cfg.Engine.BatteryOptimizationLevel,
	}
	handlers := api.NewHandlers(
		taskService,
		intentService,
		engine,
		tracker,
		cat,
		executor,
		scheduleService,
		agentTools,
		jwtService,
		defaultContext,
	)
	eventsHandler := api.NewEventsHandler(jwtService, taskService)

	// Setup routes
	router := api.SetupRoutes(handlers, eventsHandler, jwtService)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
