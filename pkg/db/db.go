/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db pkg/db/db.go provides SQLite storage for node probe history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	dirPerm = 0o755

	// SQL statements for database initialization.
	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS node_ping_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nodeId INTEGER NOT NULL,
		nodeName TEXT NOT NULL,
		fqdn TEXT,
		memoryMb INTEGER,
		diskMb INTEGER,
		ts INTEGER NOT NULL,
		at TEXT NOT NULL,
		online INTEGER NOT NULL,
		maintenance INTEGER NOT NULL,
		latencyMs INTEGER,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_node_ping_history_node_ts
		ON node_ping_history(nodeId, ts);
	CREATE INDEX IF NOT EXISTS idx_node_ping_history_ts
		ON node_ping_history(ts);
	`

	insertSampleSQL = `
	INSERT INTO node_ping_history
		(nodeId, nodeName, fqdn, memoryMb, diskMb, ts, at, online, maintenance, latencyMs, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectNodeSamplesSQL = `
	SELECT ts, at, online, maintenance, latencyMs, error
	FROM node_ping_history
	WHERE nodeId = ? AND ts >= ?
	ORDER BY ts ASC`

	selectRecentRecordsSQL = `
	SELECT nodeId, nodeName, fqdn, memoryMb, diskMb, ts, at, online, maintenance, latencyMs, error
	FROM node_ping_history
	WHERE ts >= ?
	ORDER BY ts ASC, id ASC`

	deleteBeforeSQL = `DELETE FROM node_ping_history WHERE ts < ?`
)

// DB represents the database connection and operations.
type DB struct {
	conn *sql.DB
}

// New creates the parent directory if needed, opens the database and
// initializes the schema.
func New(dbPath string) (Service, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedCreateDir, err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(createTablesSQL)

	return err
}

// Begin starts a transaction.
func (db *DB) Begin(ctx context.Context) (Transaction, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	return ToTransaction(tx), nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertSample writes one sample row.
func (db *DB) InsertSample(ctx context.Context, rec *SampleRecord) error {
	_, err := db.conn.ExecContext(ctx, insertSampleSQL,
		rec.NodeID,
		rec.NodeName,
		rec.FQDN,
		rec.MemoryMB,
		rec.DiskMB,
		rec.TS,
		rec.At,
		boolToInt(rec.Online),
		boolToInt(rec.Maintenance),
		nullInt64(rec.LatencyMs),
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("%w: node %d: %w", ErrFailedToInsert, rec.NodeID, err)
	}

	return nil
}

// GetNodeSamples returns the samples of one node with ts >= sinceMs, oldest first.
func (db *DB) GetNodeSamples(ctx context.Context, nodeID int, sinceMs int64) ([]models.Sample, error) {
	rows, err := db.query(ctx, selectNodeSamplesSQL, nodeID, sinceMs)
	if err != nil {
		return nil, err
	}
	defer CloseRows(rows)

	var samples []models.Sample

	for rows.Next() {
		var s models.Sample

		if err := scanSample(rows, &s); err != nil {
			return nil, err
		}

		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	return samples, nil
}

// GetRecentRecords returns every row with ts >= sinceMs, oldest first.
func (db *DB) GetRecentRecords(ctx context.Context, sinceMs int64) ([]SampleRecord, error) {
	rows, err := db.query(ctx, selectRecentRecordsSQL, sinceMs)
	if err != nil {
		return nil, err
	}
	defer CloseRows(rows)

	var records []SampleRecord

	for rows.Next() {
		var (
			rec              SampleRecord
			fqdn             sql.NullString
			memoryMB, diskMB sql.NullInt64
		)

		if err := scanRecord(rows, &rec, &fqdn, &memoryMB, &diskMB); err != nil {
			return nil, err
		}

		rec.FQDN = fqdn.String
		rec.MemoryMB = memoryMB.Int64
		rec.DiskMB = diskMB.Int64

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	return records, nil
}

func (db *DB) query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToQuery, err)
	}

	return &SQLRows{rows}, nil
}

func scanSample(row Row, s *models.Sample) error {
	var (
		online, maintenance int64
		latency             sql.NullInt64
		errText             sql.NullString
	)

	if err := row.Scan(&s.TS, &s.At, &online, &maintenance, &latency, &errText); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	fillSample(s, online, maintenance, latency, errText)

	return nil
}

func scanRecord(row Row, rec *SampleRecord, fqdn *sql.NullString, memoryMB, diskMB *sql.NullInt64) error {
	var (
		online, maintenance int64
		latency             sql.NullInt64
		errText             sql.NullString
	)

	err := row.Scan(&rec.NodeID, &rec.NodeName, fqdn, memoryMB, diskMB,
		&rec.TS, &rec.At, &online, &maintenance, &latency, &errText)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToScan, err)
	}

	fillSample(&rec.Sample, online, maintenance, latency, errText)

	return nil
}

func fillSample(s *models.Sample, online, maintenance int64, latency sql.NullInt64, errText sql.NullString) {
	s.Online = online != 0
	s.Maintenance = maintenance != 0
	s.LatencyMs = nil
	s.Error = nil

	if latency.Valid {
		s.LatencyMs = models.Int64Ptr(latency.Int64)
	}

	if errText.Valid {
		s.Error = models.StringPtr(errText.String)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *v, Valid: true}
}
