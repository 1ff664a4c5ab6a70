package main

import (
	"fmt"
	"log"
	"time"

	"taskpilot/internal/catalog"
	"taskpilot/internal/config"
	"taskpilot/internal/database"
	"taskpilot/internal/models"
)

// Connectivity and catalog sanity check. Verifies the configured catalog
// loads, then exercises the MongoDB collections with a round trip.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("=== Catalog Check ===\n\n")
	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.SchemaPath)
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}
	for i, m := range cat.Models() {
		fmt.Printf("  [%d] %s (%s): %.0fMB, cpu=%s, battery=%s, accuracy=%.2f\n",
			i+1, m.Name, m.Type, m.Resources.MemoryMB, m.Resources.CPUIntensity,
			m.Resources.BatteryImpact, m.AverageAccuracy)
	}
	fmt.Printf("\nBaseline model: %s\n\n", cat.Baseline().Name)

	if cfg.MongoDB.URI == "" && cfg.MongoDB.Host == "" {
		fmt.Println("MongoDB not configured, skipping database check")
		return
	}

	fmt.Printf("=== MongoDB Check ===\n\n")
	client, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close()

	// Round trip through the performance collection
	probe := models.ModelPerformance{
		ModelName:      "connectivity-probe",
		ExecutionCount: 1,
		SuccessRate:    1.0,
		LastUsed:       time.Now(),
	}
	if err := client.UpsertModelPerformance(probe); err != nil {
		log.Fatalf("Failed to write probe aggregate: %v", err)
	}

	aggregates, err := client.LoadModelPerformance()
	if err != nil {
		log.Fatalf("Failed to read model performance: %v", err)
	}
	fmt.Printf("Found %d persisted model aggregates\n", len(aggregates))
	for _, perf := range aggregates {
		fmt.Printf("  %s: executions=%d, success=%.2f, accuracy=%.2f\n",
			perf.ModelName, perf.ExecutionCount, perf.SuccessRate, perf.AverageAccuracy)
	}

	schedules, err := client.GetAllSchedules()
	if err != nil {
		log.Fatalf("Failed to read schedules: %v", err)
	}
	fmt.Printf("\nFound %d stored schedules\n", len(schedules))

	completed, err := client.ListTasksByStatus(models.TaskStatusCompleted, 10)
	if err != nil {
		log.Fatalf("Failed to read tasks: %v", err)
	}
	fmt.Printf("Found %d recently completed tasks\n", len(completed))

	fmt.Println("\nAll checks passed")
}
