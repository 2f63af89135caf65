package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName  = "Attempts"
	exportTimeLayout = "2006-01-02 15:04:05"
)

var exportHeaders = []string{
	"Attempt ID", "User ID", "Quiz ID", "Quiz Title", "Status",
	"Start Time", "End Time", "Score", "Total Questions", "Percentage",
}

type exportService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewExportService(repo repositories.Repository, validator *validator.Validator, logger *slog.Logger) ExportService {
	return &exportService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// ExportAttempts writes an XLSX workbook of attempts to w. Users export their own
// history; admins may export any user or, with no user_id, everyone.
func (s *exportService) ExportAttempts(ctx context.Context, caller models.Caller, req *ExportRequest, w io.Writer) error {
	if req == nil {
		req = &ExportRequest{}
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	filters, err := s.exportFilters(caller, req)
	if err != nil {
		return err
	}

	attempts, _, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list attempts for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("failed to write Excel headers: %w", err)
	}

	for i, attempt := range attempts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := attemptRow(attempt)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported attempts",
		"caller", caller.UserID,
		"user_id", filters.UserID,
		"rows", len(attempts))

	return nil
}

func (s *exportService) exportFilters(caller models.Caller, req *ExportRequest) (repositories.AttemptFilters, error) {
	userID := req.UserID
	if userID == "" && !caller.IsAdmin() {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.IsAdmin() {
		return repositories.AttemptFilters{}, NewPermissionError(caller.UserID, 0, "attempt export", "export", "only admins can export other users")
	}

	filters := repositories.AttemptFilters{
		UserID:    userID,
		QuizID:    req.QuizID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		SortBy:    "start_time",
		SortOrder: "desc",
	}
	if req.Status != "" {
		status := models.AttemptStatus(req.Status)
		filters.Status = &status
	}
	return filters, nil
}

func attemptRow(attempt *models.UserQuizAttempt) []interface{} {
	endTime := ""
	if attempt.EndTime != nil {
		endTime = attempt.EndTime.UTC().Format(exportTimeLayout)
	}

	return []interface{}{
		attempt.ID,
		attempt.UserID,
		attempt.QuizID,
		quizTitle(attempt),
		string(attempt.Status),
		attempt.StartTime.UTC().Format(exportTimeLayout),
		endTime,
		scoreValue(attempt),
		attempt.TotalQuestions,
		attempt.Percentage(),
	}
}

// ExportFileName names the download after the exported user and day
func ExportFileName(userID string, now time.Time) string {
	if userID == "" {
		userID = "all"
	}
	return fmt.Sprintf("attempts_%s_%s.xlsx", userID, now.UTC().Format("20060102"))
}
