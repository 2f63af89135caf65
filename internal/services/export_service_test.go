package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/SAP-F-2025/quiz-attempt-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readExport(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	return rows
}

func TestExportService_ExportAttempts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, 30*time.Minute, 1, 2)

	first, err := env.svc.Start(ctx, "alice", quiz.ID)
	require.NoError(t, err)
	env.answer(t, "alice", first.AttemptID, quiz.Questions[0].ID, 1)
	_, err = env.svc.Complete(ctx, "alice", first.AttemptID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.svc.Start(ctx, "alice", quiz.ID)
	require.NoError(t, err)
	_, err = env.svc.Start(ctx, "bob", quiz.ID)
	require.NoError(t, err)

	exporter := NewExportService(env.repo, env.validator, utils.NewDiscardLogger())
	alice := models.Caller{UserID: "alice", Role: models.RoleUser}
	admin := models.Caller{UserID: "root", Role: models.RoleAdmin}

	t.Run("user exports own attempts", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exporter.ExportAttempts(ctx, alice, nil, &buf))

		rows := readExport(t, &buf)
		require.Len(t, rows, 3)
		assert.Equal(t, exportHeaders, rows[0])
		// newest first
		assert.Equal(t, "in_progress", rows[1][4])
		assert.Equal(t, "completed", rows[2][4])
		assert.Equal(t, "alice", rows[2][1])
		assert.Equal(t, "Concurrency in Go", rows[2][3])
		assert.Equal(t, "1", rows[2][7])
		assert.Equal(t, "50", rows[2][9])
	})

	t.Run("status filter", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exporter.ExportAttempts(ctx, alice, &ExportRequest{Status: "completed"}, &buf))
		assert.Len(t, readExport(t, &buf), 2)
	})

	t.Run("user cannot export someone else", func(t *testing.T) {
		var buf bytes.Buffer
		err := exporter.ExportAttempts(ctx, alice, &ExportRequest{UserID: "bob"}, &buf)
		assert.True(t, IsForbidden(err))
		assert.Zero(t, buf.Len())
	})

	t.Run("invalid status", func(t *testing.T) {
		var buf bytes.Buffer
		err := exporter.ExportAttempts(ctx, alice, &ExportRequest{Status: "paused"}, &buf)
		assert.True(t, IsValidation(err))
	})

	t.Run("admin exports everyone", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exporter.ExportAttempts(ctx, admin, &ExportRequest{}, &buf))
		assert.Len(t, readExport(t, &buf), 4)

		buf.Reset()
		require.NoError(t, exporter.ExportAttempts(ctx, admin, &ExportRequest{UserID: "bob"}, &buf))
		rows := readExport(t, &buf)
		require.Len(t, rows, 2)
		assert.Equal(t, "bob", rows[1][1])
	})
}

func TestExportFileName(t *testing.T) {
	day := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "attempts_alice_20250301.xlsx", ExportFileName("alice", day))
	assert.Equal(t, "attempts_all_20250301.xlsx", ExportFileName("", day))
}
