package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"taskpilot/internal/models"
	"taskpilot/internal/recommend"
	"taskpilot/internal/utils"
)

// PerformanceReport combines one workflow run with the current per-model
// running aggregates.
type PerformanceReport struct {
	GeneratedAt     string                    `json:"generatedAt"`
	PeriodStart     string                    `json:"periodStart"`
	PeriodEnd       string                    `json:"periodEnd"`
	WorkflowName    string                    `json:"workflowName,omitempty"`
	TaskOutcomes    []TaskOutcome             `json:"taskOutcomes,omitempty"`
	Completed       int                       `json:"completed"`
	Failed          int                       `json:"failed"`
	Cancelled       int                       `json:"cancelled"`
	ModelAggregates []models.ModelPerformance `json:"modelAggregates"`
}

// ReportService builds performance reports and delivers them by email
type ReportService struct {
	tracker      *recommend.Tracker
	pdfService   *PDFService
	emailService *EmailService // optional, nil disables delivery
}

// NewReportService creates a report service. emailService may be nil.
func NewReportService(tracker *recommend.Tracker, pdfService *PDFService, emailService *EmailService) *ReportService {
	return &ReportService{
		tracker:      tracker,
		pdfService:   pdfService,
		emailService: emailService,
	}
}

// BuildReport assembles a performance report covering the current
// Monday-to-Sunday week. result may be nil for a standalone aggregate-only
// report.
func (s *ReportService) BuildReport(workflowName string, result *WorkflowResult) *PerformanceReport {
	now := time.Now()
	monday, sunday := utils.CalculateWeekRange(now)
	report := &PerformanceReport{
		GeneratedAt:  utils.FormatDate(now),
		PeriodStart:  utils.FormatDate(monday),
		PeriodEnd:    utils.FormatDate(sunday),
		WorkflowName: workflowName,
	}

	if result != nil {
		report.TaskOutcomes = result.Tasks
		report.Completed = result.Completed
		report.Failed = result.Failed
		report.Cancelled = result.Cancelled
	}

	aggregates := s.tracker.Snapshot()
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].ModelName < aggregates[j].ModelName
	})
	// Presentation rounding; the tracker keeps full precision
	for i := range aggregates {
		aggregates[i].AverageAccuracy = utils.Round2(aggregates[i].AverageAccuracy)
		aggregates[i].AverageInferenceMs = utils.Round2(aggregates[i].AverageInferenceMs)
		aggregates[i].SuccessRate = utils.Round2(aggregates[i].SuccessRate)
		aggregates[i].ResourceEfficiency = utils.Round2(aggregates[i].ResourceEfficiency)
	}
	report.ModelAggregates = aggregates

	return report
}

// SendPerformanceReport builds the report for a finished workflow run and
// emails it with a PDF attachment.
func (s *ReportService) SendPerformanceReport(toEmail, workflowName string, result *WorkflowResult) error {
	if s.emailService == nil {
		return fmt.Errorf("email delivery is not configured")
	}

	report := s.BuildReport(workflowName, result)

	pdfData, err := s.pdfService.GeneratePerformanceReportPDF(report)
	if err != nil {
		log.Printf("WARNING: Failed to generate report PDF for %s: %v", workflowName, err)
		pdfData = nil
	}

	if err := s.emailService.SendPerformanceReportEmail(toEmail, workflowName, report, pdfData); err != nil {
		return fmt.Errorf("failed to deliver performance report: %w", err)
	}

	log.Printf("[REPORT] Sent performance report for %s to %s", workflowName, toEmail)
	return nil
}
