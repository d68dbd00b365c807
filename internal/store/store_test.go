// File: internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vexred/aegis-cli/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for
// more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

const sqlInsertAssessment = `
        INSERT INTO assessments (id, started_at, finished_at, scanners_executed, scanners_successful, scanners_failed, scanners_timed_out, files_processed)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `

var findingColumns = []string{"id", "assessment_id", "scanner", "observed_at", "category", "severity", "title", "description", "file_path", "line", "reference_id", "likelihood", "impact"}

var complianceColumns = []string{"assessment_id", "framework", "control_id", "overall_status", "timeline", "evidence", "gaps", "remediation_actions"}

func sampleResult() *schemas.AssessmentResult {
	return &schemas.AssessmentResult{
		AssessmentID: uuid.NewString(),
		StartedAt:    time.Now().Add(-time.Minute),
		FinishedAt:   time.Now(),
		Findings: []schemas.Finding{
			{
				ID:         "finding-1",
				Scanner:    "sqli",
				ObservedAt: time.Now(),
				Category:   schemas.CategorySQLInjection,
				Severity:   schemas.SeverityCritical,
				Title:      "SQL injection in login handler",
			},
		},
		Counters: schemas.Counters{ScannersExecuted: 1, ScannersSuccessful: 1},
	}
}

func sampleCompliance() map[schemas.Framework][]schemas.ComplianceMapping {
	return map[schemas.Framework][]schemas.ComplianceMapping{
		schemas.FrameworkOWASP: {
			{
				ControlID:          "A03:2021",
				Framework:          schemas.FrameworkOWASP,
				OverallStatus:      schemas.StatusNonCompliant,
				Timeline:           "24-48 hours",
				Evidence:           []string{"SQL injection in login handler (critical)"},
				RemediationActions: []string{"Use parameterized queries"},
			},
		},
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPersistAssessment(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T, logger *zap.Logger) (*Store, pgxmock.PgxPoolIface) {
		t.Helper()
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(mockPool.Close)

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, logger)
		require.NoError(t, err)
		return store, mockPool
	}

	t.Run("should persist a full run without rollback errors", func(t *testing.T) {
		observedZapCore, observedLogs := observer.New(zapcore.ErrorLevel)
		store, mockPool := newStore(t, zap.New(observedZapCore))

		result := sampleResult()
		compliance := sampleCompliance()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertAssessment)).
			WithArgs(
				result.AssessmentID,
				result.StartedAt.UTC(),
				result.FinishedAt.UTC(),
				result.Counters.ScannersExecuted,
				result.Counters.ScannersSuccessful,
				result.Counters.ScannersFailed,
				result.Counters.ScannersTimedOut,
				result.Counters.FilesProcessed,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"findings"}, findingColumns).
			WillReturnResult(1)
		mockPool.ExpectCopyFrom(pgx.Identifier{"compliance_mappings"}, complianceColumns).
			WillReturnResult(1)
		mockPool.ExpectCommit()
		mockPool.ExpectRollback() // deferred rollback after commit is a no-op

		err := store.PersistAssessment(ctx, result, compliance)
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
		assert.Zero(t, observedLogs.Len(), "rollback after commit must not log an error")
	})

	t.Run("should roll back when the findings copy fails", func(t *testing.T) {
		store, mockPool := newStore(t, zap.NewNop())

		copyErr := errors.New("copy failed")
		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertAssessment)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCopyFrom(pgx.Identifier{"findings"}, findingColumns).
			WillReturnError(copyErr)
		mockPool.ExpectRollback()

		err := store.PersistAssessment(ctx, sampleResult(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, copyErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should skip the findings copy when there are none", func(t *testing.T) {
		store, mockPool := newStore(t, zap.NewNop())

		result := sampleResult()
		result.Findings = nil

		mockPool.ExpectBegin()
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertAssessment)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()
		mockPool.ExpectRollback()

		err := store.PersistAssessment(ctx, result, nil)
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should reject a nil result", func(t *testing.T) {
		store, _ := newStore(t, zap.NewNop())
		assert.Error(t, store.PersistAssessment(ctx, nil, nil))
	})
}

func TestGetFindingsByAssessmentID(t *testing.T) {
	ctx := context.Background()

	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectPing().WillReturnError(nil)
	store, err := New(ctx, mockPool, zap.NewNop())
	require.NoError(t, err)

	assessmentID := uuid.NewString()
	observed := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "scanner", "observed_at", "category", "severity", "title", "description", "file_path", "line", "reference_id", "likelihood", "impact"}).
		AddRow("finding-1", "sqli", observed, "sql_injection", "critical", "SQL injection", "Input concatenated into query", "auth/login.go", 42, "CWE-89", 5, "Full database compromise")

	mockPool.ExpectQuery(`SELECT .+ FROM findings WHERE assessment_id = \$1`).
		WithArgs(assessmentID).
		WillReturnRows(rows)

	findings, err := store.GetFindingsByAssessmentID(ctx, assessmentID)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, assessmentID, f.AssessmentID)
	assert.Equal(t, schemas.CategorySQLInjection, f.Category)
	assert.Equal(t, schemas.SeverityCritical, f.Severity)
	assert.Equal(t, 42, f.Line)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
