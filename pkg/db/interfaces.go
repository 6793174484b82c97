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

// Package db pkg/db/interfaces.go
package db

import (
	"context"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/pterostatus/pkg/db Row,Result,Rows,Transaction,Service

// SampleRecord is one stored probe sample together with the node columns
// captured when it was written.
type SampleRecord struct {
	NodeID   int
	NodeName string
	FQDN     string
	MemoryMB int64
	DiskMB   int64
	models.Sample
}

// Row represents a database row.
type Row interface {
	Scan(dest ...interface{}) error
}

// Result represents the result of a database operation.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Rows represents multiple database rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Transaction represents operations that can be performed within a database transaction.
type Transaction interface {
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Commit() error
	Rollback() error
}

// Service represents all durable history operations.
type Service interface {
	Begin(ctx context.Context) (Transaction, error)
	Close() error

	// Sample operations.

	InsertSample(ctx context.Context, rec *SampleRecord) error
	GetNodeSamples(ctx context.Context, nodeID int, sinceMs int64) ([]models.Sample, error)
	GetRecentRecords(ctx context.Context, sinceMs int64) ([]SampleRecord, error)

	// Maintenance operations.

	PruneBefore(ctx context.Context, cutoffMs int64) (int64, error)
}
