package imports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderReport produces a one-page PDF summary of a finalized import job.
func RenderReport(job *Job) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Import Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("File: %s", job.Filename))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Mode: %s", job.Mode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Rows parsed: %d", job.RowCount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("State: %s", job.State))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Opened: %s", job.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	if job.FinalizedAt != nil {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Finalized: %s", job.FinalizedAt.Format("2006-01-02 15:04:05 MST")))
	}

	if job.Outcome != nil {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Outcome")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Succeeded: %d", job.Outcome.SuccessCount))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Failed: %d", job.Outcome.FailureCount))
		if len(job.Outcome.FailureMessages) > 0 {
			pdf.Ln(10)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 8, "Failure details")
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 11)
			for _, message := range job.Outcome.FailureMessages {
				pdf.MultiCell(0, 6, fmt.Sprintf("- %s", message), "", "L", false)
				pdf.Ln(1)
			}
			if job.Outcome.FailureCount > len(job.Outcome.FailureMessages) {
				pdf.Ln(2)
				pdf.SetFont("Helvetica", "I", 10)
				pdf.Cell(0, 6, fmt.Sprintf("and %d more", job.Outcome.FailureCount-len(job.Outcome.FailureMessages)))
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
