package services

import (
	"bytes"
	"fmt"

	"taskpilot/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService handles PDF generation for performance reports
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// GeneratePerformanceReportPDF generates a PDF from a performance report
func (s *PDFService) GeneratePerformanceReportPDF(report *PerformanceReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("invalid report data")
	}

	// A4 portrait
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// Title page
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 20, "Model Performance Report", "", 0, "C", false, 0, "")

	pdf.Ln(15)
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 10, fmt.Sprintf("Generated: %s", report.GeneratedAt), "", 0, "C", false, 0, "")
	pdf.Ln(15)

	if report.WorkflowName != "" {
		s.addHeader(pdf, fmt.Sprintf("Workflow: %s", report.WorkflowName))
		s.addWorkflowSummary(pdf, report)
	}

	if len(report.ModelAggregates) > 0 {
		s.addHeader(pdf, "Model Performance")
		s.addModelTable(pdf, report.ModelAggregates)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addHeader adds a section header with an underline rule
func (s *PDFService) addHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(33, 37, 41) // Dark gray
	pdf.CellFormat(0, 10, title, "", 0, "L", false, 0, "")

	pdf.Ln(10)
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204) // Blue
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)
}

// addWorkflowSummary renders the workflow's task outcome counts
func (s *PDFService) addWorkflowSummary(pdf *gofpdf.Fpdf, report *PerformanceReport) {
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 7, fmt.Sprintf("Tasks executed: %d", len(report.TaskOutcomes)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Completed: %d    Failed: %d    Cancelled: %d",
		report.Completed, report.Failed, report.Cancelled), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(report.TaskOutcomes) == 0 {
		return
	}

	// Per-task outcome table
	headers := []string{"Task", "Model", "Status", "Attempts", "Duration (ms)"}
	widths := []float64{60, 40, 28, 22, 30}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(0, 102, 204)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(33, 37, 41)
	fill := false
	for _, outcome := range report.TaskOutcomes {
		pdf.SetFillColor(248, 249, 250)
		pdf.CellFormat(widths[0], 7, truncateCell(outcome.Name, 38), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 7, outcome.ModelUsed, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 7, string(outcome.Status), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", outcome.Attempts), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.0f", outcome.DurationMs), "1", 0, "R", fill, 0, "")
		pdf.Ln(-1)
		fill = !fill
	}
	pdf.Ln(6)
}

// addModelTable renders the per-model running aggregates
func (s *PDFService) addModelTable(pdf *gofpdf.Fpdf, aggregates []models.ModelPerformance) {
	headers := []string{"Model", "Executions", "Success Rate", "Avg Accuracy", "Avg Inference (ms)", "Efficiency"}
	widths := []float64{44, 24, 26, 26, 34, 26}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(0, 102, 204)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(33, 37, 41)
	fill := false
	for _, perf := range aggregates {
		pdf.SetFillColor(248, 249, 250)
		pdf.CellFormat(widths[0], 7, perf.ModelName, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", perf.ExecutionCount), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.1f%%", perf.SuccessRate*100), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", perf.AverageAccuracy), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.0f", perf.AverageInferenceMs), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(widths[5], 7, fmt.Sprintf("%.2f", perf.ResourceEfficiency), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
		fill = !fill
	}
}

func truncateCell(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
