package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// ExportService renders the submitted responses of an assessment as a spreadsheet
type ExportService interface {
	ExportResponsesToExcel(ctx context.Context, assessmentID string) ([]byte, error)
	ExportResponsesToCSV(ctx context.Context, assessmentID string) ([]byte, error)
}

type exportService struct {
	assessments AssessmentService
	responses   ResponseService
	logger      *slog.Logger
}

func NewExportService(assessments AssessmentService, responses ResponseService, logger *slog.Logger) ExportService {
	return &exportService{
		assessments: assessments,
		responses:   responses,
		logger:      logger,
	}
}

// ===== EXPORT OPERATIONS =====

func (s *exportService) ExportResponsesToExcel(ctx context.Context, assessmentID string) ([]byte, error) {
	s.logger.Info("Exporting responses", "assessment_id", assessmentID, "format", "xlsx")

	headers, rows, err := s.table(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Responses"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for rowIndex, row := range append([][]interface{}{headers}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rowIndex+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) ExportResponsesToCSV(ctx context.Context, assessmentID string) ([]byte, error) {
	s.logger.Info("Exporting responses", "assessment_id", assessmentID, "format", "csv")

	headers, rows, err := s.table(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range append([][]interface{}{headers}, rows...) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// table lays responses out one per row with a column per question in document order
func (s *exportService) table(ctx context.Context, assessmentID string) ([]interface{}, [][]interface{}, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.responses.List(ctx, assessmentID, nil, nil)
	if err != nil {
		return nil, nil, err
	}

	questionIDs := assessment.OrderedQuestionIDs()
	headers := []interface{}{"Response ID", "Candidate ID", "Submitted At", "Elapsed (seconds)"}
	for i, id := range questionIDs {
		headers = append(headers, questionHeader(i, assessment.Questions[id]))
	}

	rows := make([][]interface{}, 0, len(list.Responses))
	for _, r := range list.Responses {
		answers := r.Answers.Data()
		row := []interface{}{r.ID, r.CandidateID, r.SubmittedAt.Format(exportTimeLayout), r.ElapsedSeconds}
		for _, id := range questionIDs {
			row = append(row, cellValue(assessment.Questions[id], answers.Lookup(id)))
		}
		rows = append(rows, row)
	}

	s.logger.Debug("Export table built", "assessment_id", assessmentID, "rows", len(rows), "questions", len(questionIDs))
	return headers, rows, nil
}

func questionHeader(i int, q models.Question) string {
	if q.Text == "" {
		return "Q" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("Q%d. %s", i+1, q.Text)
}

// numeric answers are written as numbers so the sheet can aggregate them
func cellValue(q models.Question, answer *models.Answer) interface{} {
	if answer == nil {
		return ""
	}
	if q.Type == models.Numeric {
		if f, err := strconv.ParseFloat(answer.String(), 64); err == nil {
			return f
		}
	}
	return answer.String()
}
