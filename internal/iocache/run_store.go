package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/hoc/internal/contract"
	"github.com/huangsam/hoc/schema"
)

// Table names for run tracking.
const (
	runsTable        = "hoc_runs"
	commitStatsTable = "hoc_commit_stats"
)

// runColumns is the column list shared by the run queries.
const runColumns = `run_id, run_uuid, repo_path, head_commit, find_renames_and_copies, start_time, end_time,
	run_duration_ms, commits, merges, files_changed, insertions, deletions, total_hits`

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{commitStatsTable, getCreateCommitStatsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for hoc_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL UNIQUE,
				repo_path VARCHAR(1024) NOT NULL,
				head_commit VARCHAR(64),
				find_renames_and_copies BOOLEAN NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				commits BIGINT,
				merges BIGINT,
				files_changed BIGINT,
				insertions BIGINT,
				deletions BIGINT,
				total_hits BIGINT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid UUID NOT NULL UNIQUE,
				repo_path TEXT NOT NULL,
				head_commit TEXT,
				find_renames_and_copies BOOLEAN NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				commits BIGINT,
				merges BIGINT,
				files_changed BIGINT,
				insertions BIGINT,
				deletions BIGINT,
				total_hits BIGINT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL UNIQUE,
				repo_path TEXT NOT NULL,
				head_commit TEXT,
				find_renames_and_copies INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				commits INTEGER,
				merges INTEGER,
				files_changed INTEGER,
				insertions INTEGER,
				deletions INTEGER,
				total_hits INTEGER
			);
		`, quotedTableName)
	}
}

// getCreateCommitStatsQuery returns the CREATE TABLE query for hoc_commit_stats.
func getCreateCommitStatsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(commitStatsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				commit_hash VARCHAR(64) NOT NULL,
				parents INT NOT NULL,
				files_changed BIGINT NOT NULL,
				insertions BIGINT NOT NULL,
				deletions BIGINT NOT NULL,
				PRIMARY KEY (run_id, commit_hash)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				commit_hash TEXT NOT NULL,
				parents INT NOT NULL,
				files_changed BIGINT NOT NULL,
				insertions BIGINT NOT NULL,
				deletions BIGINT NOT NULL,
				PRIMARY KEY (run_id, commit_hash)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				commit_hash TEXT NOT NULL,
				parents INTEGER NOT NULL,
				files_changed INTEGER NOT NULL,
				insertions INTEGER NOT NULL,
				deletions INTEGER NOT NULL,
				PRIMARY KEY (run_id, commit_hash)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, repoPath string, findRenamesAndCopies bool) (int64, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return 0, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	runUUID := uuid.NewString()

	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, repo_path, find_renames_and_copies, start_time) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, runUUID, repoPath, findRenamesAndCopies, startTime).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, repo_path, find_renames_and_copies, start_time) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, runUUID, repoPath, findRenamesAndCopies, formatTime(startTime, rs.backend))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with the computed result.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, result *schema.HocResult) error {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil
	}
	if result == nil {
		return fmt.Errorf("no result for run %d", runID)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	var startTime dbTime
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), rs.backend)
	if err := rs.db.QueryRow(query, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	filesChanged, err := toInt64(result.Stats.FilesChanged, "files_changed")
	if err != nil {
		return err
	}
	insertions, err := toInt64(result.Stats.Insertions, "insertions")
	if err != nil {
		return err
	}
	deletions, err := toInt64(result.Stats.Deletions, "deletions")
	if err != nil {
		return err
	}
	totalHits, err := toInt64(result.Total, "total_hits")
	if err != nil {
		return err
	}

	var headCommit *string
	if result.Head != "" {
		headCommit = &result.Head
	}

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET head_commit = ?, end_time = ?, run_duration_ms = ?, commits = ?, merges = ?,
		files_changed = ?, insertions = ?, deletions = ?, total_hits = ? WHERE run_id = ?`, quotedTableName), rs.backend)
	_, err = rs.db.Exec(updateQuery,
		headCommit, formatTime(endTime, rs.backend), durationMs, int64(result.Commits), int64(result.Merges),
		filesChanged, insertions, deletions, totalHits, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordCommitStats stores the stats of every commit visited by a run in one transaction.
func (rs *RunStoreImpl) RecordCommitStats(runID int64, commits []schema.CommitStats) error {
	// Skip for NoneBackend
	if rs.disabled() || len(commits) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, commit_hash, parents, files_changed, insertions, deletions) VALUES (?, ?, ?, ?, ?, ?)`,
		quoteTableName(commitStatsTable, rs.backend)), rs.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare commit stats insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range commits {
		filesChanged, err := toInt64(c.Stats.FilesChanged, "files_changed")
		if err != nil {
			return err
		}
		insertions, err := toInt64(c.Stats.Insertions, "insertions")
		if err != nil {
			return err
		}
		deletions, err := toInt64(c.Stats.Deletions, "deletions")
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(runID, c.Hash, c.Parents, filesChanged, insertions, deletions); err != nil {
			return fmt.Errorf("failed to insert stats for commit %s: %w", c.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit commit stats: %w", err)
	}
	return nil
}

// GetAllRuns retrieves all runs ordered by ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id", runColumns, quoteTableName(runsTable, rs.backend))
	return rs.queryRuns(query)
}

// GetRecentRuns retrieves up to limit runs, newest first.
func (rs *RunStoreImpl) GetRecentRuns(limit int) ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	query := rebind(fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id DESC LIMIT ?", runColumns, quoteTableName(runsTable, rs.backend)), rs.backend)
	return rs.queryRuns(query, limit)
}

// queryRuns runs a SELECT over runColumns and scans every row.
func (rs *RunStoreImpl) queryRuns(query string, args ...any) ([]schema.RunRecord, error) {
	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startTime, endTime dbTime
		if err := rows.Scan(&record.RunID, &record.RunUUID, &record.RepoPath, &record.HeadCommit,
			&record.FindRenamesAndCopies, &startTime, &endTime, &record.RunDurationMs, &record.Commits,
			&record.Merges, &record.FilesChanged, &record.Insertions, &record.Deletions, &record.TotalHits); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = startTime.Time
		record.EndTime = endTime.Ptr()
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllCommitStats retrieves every recorded commit row ordered by run.
func (rs *RunStoreImpl) GetAllCommitStats() ([]schema.CommitStatsRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, commit_hash, parents, files_changed, insertions, deletions
		FROM %s ORDER BY run_id, commit_hash`, quoteTableName(commitStatsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitStatsRecord
	for rows.Next() {
		var r schema.CommitStatsRecord
		if err := rows.Scan(&r.RunID, &r.CommitHash, &r.Parents, &r.FilesChanged, &r.Insertions, &r.Deletions); err != nil {
			return nil, fmt.Errorf("failed to scan commit stats: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit stats: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRunTime, oldestRunTime dbTime
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(oldestRunQuery).Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = lastRunTime.Time
		status.OldestRunTime = oldestRunTime.Time
	}

	for _, table := range []string{runsTable, commitStatsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
