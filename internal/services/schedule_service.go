package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"taskpilot/internal/database"
	"taskpilot/internal/models"
	"taskpilot/internal/utils"

	"github.com/robfig/cron/v3"
)

// Cron spec used when a schedule has no trigger time: daily at 06:00:00
const defaultCronSpec = "0 0 6 * * *"

// ScheduleService runs recurring workflows on a cron scheduler. Schedules
// are persisted in MongoDB and re-registered at startup.
type ScheduleService struct {
	cron        *cron.Cron
	executor    *Executor
	reporter    *ReportService // optional, nil disables report emails
	mongoClient *database.MongoDBClient

	mutex   sync.Mutex
	entries map[string]cron.EntryID // scheduleID -> cron entry
}

// NewScheduleService creates a schedule service. reporter and mongoClient
// may be nil; without mongo, schedules live only in memory.
func NewScheduleService(executor *Executor, reporter *ReportService, mongoClient *database.MongoDBClient) *ScheduleService {
	return &ScheduleService{
		cron:        cron.New(cron.WithSeconds()),
		executor:    executor,
		reporter:    reporter,
		mongoClient: mongoClient,
		entries:     make(map[string]cron.EntryID),
	}
}

// Start begins cron execution
func (s *ScheduleService) Start() {
	s.cron.Start()
	log.Println("[SCHEDULER] Cron scheduler started")
}

// Stop halts cron execution and waits for running jobs
func (s *ScheduleService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[SCHEDULER] Cron scheduler stopped")
}

// cronSpecFor converts an optional trigger time into a weekly cron spec.
// The weekday, hour, minute and second of the trigger time are kept; the
// date component only anchors the weekday.
func cronSpecFor(triggerTime *time.Time) string {
	if triggerTime == nil {
		return defaultCronSpec
	}
	t := triggerTime.Local()
	return fmt.Sprintf("%d %d %d * * %d", t.Second(), t.Minute(), t.Hour(), int(t.Weekday()))
}

// CreateSchedule registers a recurring workflow and persists it
func (s *ScheduleService) CreateSchedule(request models.CreateScheduleRequest) (*database.StoredSchedule, error) {
	var triggerTime *time.Time
	if request.TriggerTime != nil && *request.TriggerTime != "" {
		parsed, err := time.Parse(time.RFC3339, *request.TriggerTime)
		if err != nil {
			return nil, models.WrapAgentError(models.ErrInvalidConfiguration,
				fmt.Sprintf("invalid trigger time %q, expected RFC3339", *request.TriggerTime), err)
		}
		triggerTime = &parsed
	}

	schedule := database.StoredSchedule{
		ScheduleID:  utils.GenerateUUID(),
		Name:        request.Name,
		Workflow:    request.Workflow,
		TriggerTime: triggerTime,
		Email:       request.Email,
		CreatedAt:   time.Now(),
	}

	if err := s.register(schedule); err != nil {
		return nil, err
	}

	if s.mongoClient != nil {
		if err := s.mongoClient.AddSchedule(schedule); err != nil {
			log.Printf("WARNING: Failed to persist schedule %s: %v", schedule.ScheduleID, err)
		}
	}

	log.Printf("[SCHEDULER] Registered schedule %s (%s) with spec %q",
		schedule.ScheduleID, schedule.Name, cronSpecFor(schedule.TriggerTime))
	return &schedule, nil
}

// RemoveSchedule unregisters and deletes a schedule
func (s *ScheduleService) RemoveSchedule(scheduleID string) error {
	s.mutex.Lock()
	entryID, exists := s.entries[scheduleID]
	if exists {
		s.cron.Remove(entryID)
		delete(s.entries, scheduleID)
	}
	s.mutex.Unlock()

	if !exists {
		return fmt.Errorf("schedule not found: %s", scheduleID)
	}

	if s.mongoClient != nil {
		if err := s.mongoClient.RemoveSchedule(scheduleID); err != nil {
			log.Printf("WARNING: Failed to delete schedule %s: %v", scheduleID, err)
		}
	}

	log.Printf("[SCHEDULER] Removed schedule %s", scheduleID)
	return nil
}

// ListSchedules returns the persisted schedules, or the in-memory set when
// MongoDB is unavailable.
func (s *ScheduleService) ListSchedules() ([]database.StoredSchedule, error) {
	if s.mongoClient != nil {
		return s.mongoClient.GetAllSchedules()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	schedules := make([]database.StoredSchedule, 0, len(s.entries))
	for scheduleID := range s.entries {
		schedules = append(schedules, database.StoredSchedule{ScheduleID: scheduleID})
	}
	return schedules, nil
}

// LoadAndScheduleAll re-registers every persisted schedule. Called once at
// startup after the MongoDB connection is established.
func (s *ScheduleService) LoadAndScheduleAll() error {
	if s.mongoClient == nil {
		return nil
	}

	schedules, err := s.mongoClient.GetAllSchedules()
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := s.register(schedule); err != nil {
			log.Printf("WARNING: Failed to re-register schedule %s: %v", schedule.ScheduleID, err)
			continue
		}
		log.Printf("[SCHEDULER] Re-registered schedule %s (%s)", schedule.ScheduleID, schedule.Name)
	}

	log.Printf("[SCHEDULER] Loaded %d schedules from database", len(schedules))
	return nil
}

// register adds a cron entry for the schedule
func (s *ScheduleService) register(schedule database.StoredSchedule) error {
	spec := cronSpecFor(schedule.TriggerTime)
	entryID, err := s.cron.AddFunc(spec, func() {
		s.runScheduled(schedule)
	})
	if err != nil {
		return models.WrapAgentError(models.ErrInvalidConfiguration,
			fmt.Sprintf("invalid cron spec %q for schedule %s", spec, schedule.ScheduleID), err)
	}

	s.mutex.Lock()
	s.entries[schedule.ScheduleID] = entryID
	s.mutex.Unlock()
	return nil
}

// runScheduled executes one scheduled workflow and, when the schedule has a
// recipient, sends the performance report.
func (s *ScheduleService) runScheduled(schedule database.StoredSchedule) {
	log.Printf("[SCHEDULER] Running scheduled workflow %s (%s)", schedule.Name, schedule.ScheduleID)

	result, err := s.executor.ExecuteWorkflow(context.Background(), schedule.Workflow)
	if err != nil {
		log.Printf("ERROR: Scheduled workflow %s failed: %v", schedule.ScheduleID, err)
		return
	}
	log.Printf("[SCHEDULER] Workflow %s finished: %d completed, %d failed, %d cancelled",
		schedule.Name, result.Completed, result.Failed, result.Cancelled)

	if schedule.Email == "" || s.reporter == nil {
		return
	}
	if err := s.reporter.SendPerformanceReport(schedule.Email, schedule.Name, result); err != nil {
		log.Printf("ERROR: Failed to send performance report for schedule %s: %v", schedule.ScheduleID, err)
	}
}
