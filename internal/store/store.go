// File: internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store persists assessment runs to PostgreSQL. It is optional: the CLI only
// constructs one when a database URL is configured.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// PersistAssessment writes the run header, its findings and its compliance
// mappings in one transaction. Partial writes never survive an error.
func (s *Store) PersistAssessment(ctx context.Context, result *schemas.AssessmentResult, compliance map[schemas.Framework][]schemas.ComplianceMapping) error {
	if result == nil {
		return errors.New("assessment result cannot be nil")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback on an already committed transaction reports ErrTxClosed;
		// that is the normal path, not a failure.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := s.persistRun(ctx, tx, result); err != nil {
		return err
	}
	if len(result.Findings) > 0 {
		if err := s.persistFindings(ctx, tx, result.AssessmentID, result.Findings); err != nil {
			return err
		}
	}
	if err := s.persistCompliance(ctx, tx, result.AssessmentID, compliance); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) persistRun(ctx context.Context, tx pgx.Tx, result *schemas.AssessmentResult) error {
	sql := `
        INSERT INTO assessments (id, started_at, finished_at, scanners_executed, scanners_successful, scanners_failed, scanners_timed_out, files_processed)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	_, err := tx.Exec(ctx, sql,
		result.AssessmentID,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
		result.Counters.ScannersExecuted,
		result.Counters.ScannersSuccessful,
		result.Counters.ScannersFailed,
		result.Counters.ScannersTimedOut,
		result.Counters.FilesProcessed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment run: %w", err)
	}
	return nil
}

func (s *Store) persistFindings(ctx context.Context, tx pgx.Tx, assessmentID string, findings []schemas.Finding) error {
	rows := make([][]interface{}, len(findings))
	for i, f := range findings {
		rows[i] = []interface{}{
			f.ID, assessmentID, f.Scanner,
			f.ObservedAt.UTC(),
			string(f.Category), string(f.Severity),
			f.Title, f.Description,
			f.FilePath, f.Line,
			f.ReferenceID, f.Likelihood, f.Impact,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"findings"},
		[]string{"id", "assessment_id", "scanner", "observed_at", "category", "severity", "title", "description", "file_path", "line", "reference_id", "likelihood", "impact"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy findings: %w", err)
	}
	if int(copyCount) != len(findings) {
		return fmt.Errorf("mismatch in copied findings count: expected %d, got %d", len(findings), copyCount)
	}
	return nil
}

func (s *Store) persistCompliance(ctx context.Context, tx pgx.Tx, assessmentID string, compliance map[schemas.Framework][]schemas.ComplianceMapping) error {
	// Rows are built in stable framework order so inserts are deterministic.
	var rows [][]interface{}
	for _, fw := range schemas.AllFrameworks {
		for _, m := range compliance[fw] {
			rows = append(rows, []interface{}{
				assessmentID, string(fw), m.ControlID,
				string(m.OverallStatus), m.Timeline,
				strings.Join(m.Evidence, "\n"),
				strings.Join(m.Gaps, "\n"),
				strings.Join(m.RemediationActions, "\n"),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"compliance_mappings"},
		[]string{"assessment_id", "framework", "control_id", "overall_status", "timeline", "evidence", "gaps", "remediation_actions"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy compliance mappings: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied compliance mapping count: expected %d, got %d", len(rows), copyCount)
	}
	return nil
}

// GetFindingsByAssessmentID loads the findings persisted for one run, oldest
// observation first.
func (s *Store) GetFindingsByAssessmentID(ctx context.Context, assessmentID string) ([]schemas.Finding, error) {
	query := `
        SELECT id, scanner, observed_at, category, severity, title, description, file_path, line, reference_id, likelihood, impact
        FROM findings
        WHERE assessment_id = $1
        ORDER BY observed_at ASC;
    `
	rows, err := s.pool.Query(ctx, query, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []schemas.Finding
	for rows.Next() {
		var f schemas.Finding
		var category, severity string

		err := rows.Scan(
			&f.ID, &f.Scanner, &f.ObservedAt,
			&category, &severity,
			&f.Title, &f.Description,
			&f.FilePath, &f.Line,
			&f.ReferenceID, &f.Likelihood, &f.Impact,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}

		f.AssessmentID = assessmentID
		f.Category = schemas.WeaknessCategory(category)
		f.Severity = schemas.Severity(severity)
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return findings, nil
}
