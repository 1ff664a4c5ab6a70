package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskpilot/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxService writes task execution metrics to InfluxDB
type InfluxService struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
}

// NewInfluxService creates a new InfluxDB metrics service
func NewInfluxService(url, token, org, bucket string) (*InfluxService, error) {
	log.Printf("[INFLUX-INIT] Initializing InfluxDB 2.0 client: url=%s, org=%s, bucket=%s", url, org, bucket)

	client := influxdb2.NewClient(url, token)

	health, err := client.Health(context.Background())
	if err != nil {
		log.Printf("[INFLUX-ERROR] Failed to check InfluxDB health: %v", err)
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		log.Printf("[INFLUX-WARN] InfluxDB health check returned status: %s", health.Status)
	}

	writeAPI := client.WriteAPIBlocking(org, bucket)

	log.Printf("[INFLUX-INIT] InfluxDB 2.0 client initialized successfully")
	return &InfluxService{
		client:   client,
		writeAPI: writeAPI,
		org:      org,
		bucket:   bucket,
	}, nil
}

// Close shuts down the underlying client
func (s *InfluxService) Close() {
	s.client.Close()
}

// WriteTaskExecution records one task execution as a point in the
// task_execution measurement.
func (s *InfluxService) WriteTaskExecution(ctx context.Context, task *models.Task, modelName string, durationMs float64, success bool, attempts int) error {
	point := influxdb2.NewPoint(
		"task_execution",
		map[string]string{
			"category": string(task.Category),
			"priority": string(task.Priority),
			"model":    modelName,
			"status":   string(task.Status),
		},
		map[string]interface{}{
			"task_id":     task.ID,
			"duration_ms": durationMs,
			"success":     success,
			"attempts":    attempts,
		},
		time.Now(),
	)

	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("[INFLUX-ERROR] Failed to write task execution point: %v", err)
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	return nil
}

// WriteModelPerformance records a model's running aggregate as a point in
// the model_performance measurement.
func (s *InfluxService) WriteModelPerformance(ctx context.Context, perf models.ModelPerformance) error {
	point := influxdb2.NewPoint(
		"model_performance",
		map[string]string{
			"model": perf.ModelName,
		},
		map[string]interface{}{
			"execution_count":      perf.ExecutionCount,
			"average_accuracy":     perf.AverageAccuracy,
			"average_inference_ms": perf.AverageInferenceMs,
			"success_rate":         perf.SuccessRate,
			"resource_efficiency":  perf.ResourceEfficiency,
		},
		time.Now(),
	)

	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		log.Printf("[INFLUX-ERROR] Failed to write model performance point: %v", err)
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	return nil
}
