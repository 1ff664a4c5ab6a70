package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"taskpilot/internal/config"
	"taskpilot/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBClient wraps MongoDB access for task history, model performance
// aggregates and workflow schedules.
type MongoDBClient struct {
	client                *mongo.Client
	database              *mongo.Database
	tasksCollection       *mongo.Collection
	performanceCollection *mongo.Collection
	schedulesCollection   *mongo.Collection
}

// StoredSchedule is a persisted recurring workflow schedule
type StoredSchedule struct {
	ScheduleID  string                        `bson:"_id" json:"scheduleId"`
	Name        string                        `bson:"name" json:"name"`
	Workflow    models.ExecuteWorkflowRequest `bson:"workflow" json:"workflow"`
	TriggerTime *time.Time                    `bson:"triggerTime,omitempty" json:"triggerTime,omitempty"`
	Email       string                        `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt   time.Time                     `bson:"createdAt" json:"createdAt"`
}

// NewMongoDBClient creates a new MongoDB client
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI from components when not provided directly
	uri := cfg.URI
	if uri == "" {
		if cfg.Username != "" && cfg.Password != "" {
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s",
				cfg.Host,
				cfg.Port,
				cfg.Database,
			)
		}
	}

	// Mask password in log output
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s?authSource=%s",
			cfg.Username, cfg.Host, cfg.Port, cfg.Database, url.QueryEscape(cfg.AuthSource))
	}
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	tasksCollection := database.Collection("tasks")
	performanceCollection := database.Collection("model_performance")
	schedulesCollection := database.Collection("schedules")

	// Index on status for history queries
	statusIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}},
	}
	if _, err := tasksCollection.Indexes().CreateOne(ctx, statusIndex); err != nil {
		// Index might already exist, that's okay
		log.Printf("Note: MongoDB tasks index creation: %v", err)
	}

	return &MongoDBClient{
		client:                client,
		database:              database,
		tasksCollection:       tasksCollection,
		performanceCollection: performanceCollection,
		schedulesCollection:   schedulesCollection,
	}, nil
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// SaveTask upserts a task document, keyed by task ID
func (c *MongoDBClient) SaveTask(task *models.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": task.ID}
	update := bson.M{"$set": task}

	if _, err := c.tasksCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// GetTask retrieves a persisted task by ID, returning nil when absent
func (c *MongoDBClient) GetTask(taskID string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var task models.Task
	err := c.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query task %s: %w", taskID, err)
	}
	return &task, nil
}

// ListTasksByStatus retrieves persisted tasks with the given status, newest
// first, up to limit.
func (c *MongoDBClient) ListTasksByStatus(status models.TaskStatus, limit int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(limit)
	cursor, err := c.tasksCollection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// UpsertModelPerformance stores a model's running aggregate, keyed by model
// name. Satisfies recommend.PerformanceStore.
func (c *MongoDBClient) UpsertModelPerformance(perf models.ModelPerformance) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": perf.ModelName}
	update := bson.M{"$set": perf}

	if _, err := c.performanceCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert performance for %s: %w", perf.ModelName, err)
	}
	return nil
}

// LoadModelPerformance retrieves every persisted model aggregate
func (c *MongoDBClient) LoadModelPerformance() ([]models.ModelPerformance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := c.performanceCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query model performance: %w", err)
	}
	defer cursor.Close(ctx)

	var aggregates []models.ModelPerformance
	if err := cursor.All(ctx, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to decode model performance: %w", err)
	}
	return aggregates, nil
}

// AddSchedule stores a recurring workflow schedule
func (c *MongoDBClient) AddSchedule(schedule StoredSchedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": schedule.ScheduleID}
	update := bson.M{"$set": schedule}

	if _, err := c.schedulesCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add schedule %s: %w", schedule.ScheduleID, err)
	}
	return nil
}

// RemoveSchedule deletes a schedule by ID
func (c *MongoDBClient) RemoveSchedule(scheduleID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.schedulesCollection.DeleteOne(ctx, bson.M{"_id": scheduleID}); err != nil {
		return fmt.Errorf("failed to remove schedule %s: %w", scheduleID, err)
	}
	return nil
}

// GetAllSchedules retrieves every stored schedule
func (c *MongoDBClient) GetAllSchedules() ([]StoredSchedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := c.schedulesCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []StoredSchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return schedules, nil
}
