package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"taskpilot/internal/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles email sending via SendGrid
type EmailService struct {
	apiKey    string
	fromEmail string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	client := sendgrid.NewSendClient(cfg.APIKey)
	return &EmailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		client:    client,
	}
}

// SendPerformanceReportEmail sends a performance report email with PDF attachment
func (s *EmailService) SendPerformanceReportEmail(
	toEmail string,
	workflowName string,
	report *PerformanceReport,
	pdfData []byte,
) error {
	from := mail.NewEmail("TaskPilot", s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("Model Performance Report - %s", workflowName)

	htmlContent := s.buildReportEmailHTML(workflowName, report)
	plainTextContent := s.buildReportEmailText(workflowName, report)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	// Attach PDF
	if len(pdfData) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
		attachment.SetType("application/pdf")
		attachment.SetFilename(fmt.Sprintf("performance-report-%s.pdf", report.GeneratedAt))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// buildReportEmailHTML builds the HTML content for the report email
func (s *EmailService) buildReportEmailHTML(workflowName string, report *PerformanceReport) string {
	var html bytes.Buffer

	html.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .summary-box { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #0066cc; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">Model Performance Report</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">` + workflowName + `</p>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p>The scheduled workflow <strong>` + workflowName + `</strong> has finished.</p>
        <div class="summary-box">
            <h3 style="margin-top: 0; color: #0066cc;">Run Summary</h3>
            <p>` + fmt.Sprintf("%d tasks executed: %d completed, %d failed, %d cancelled.",
		len(report.TaskOutcomes), report.Completed, report.Failed, report.Cancelled) + `</p>
        </div>
        <p>The complete report is attached as a PDF document.</p>
        <p>Best regards,<br>TaskPilot</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
        <p>Generated on ` + report.GeneratedAt + `</p>
    </div>
</body>
</html>`)

	return html.String()
}

// buildReportEmailText builds the plain text content for the report email
func (s *EmailService) buildReportEmailText(workflowName string, report *PerformanceReport) string {
	var text bytes.Buffer

	text.WriteString(fmt.Sprintf(`Model Performance Report
%s

Hello,

The scheduled workflow %s has finished.

Run Summary:
%d tasks executed: %d completed, %d failed, %d cancelled.

`, workflowName, workflowName, len(report.TaskOutcomes), report.Completed, report.Failed, report.Cancelled))

	text.WriteString(`The complete report is attached as a PDF document.

Best regards,
TaskPilot

---
This is an automated email. Please do not reply.
Generated on ` + report.GeneratedAt)

	return text.String()
}
