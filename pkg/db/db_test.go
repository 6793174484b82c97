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

package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDB(t *testing.T) Service {
	t.Helper()

	svc, err := New(filepath.Join(t.TempDir(), "nested", "history.sqlite"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

func record(nodeID int, ts int64, online bool) *SampleRecord {
	rec := &SampleRecord{
		NodeID:   nodeID,
		NodeName: "node",
		FQDN:     "n.example.com",
		MemoryMB: 2048,
		DiskMB:   10240,
		Sample: models.Sample{
			TS:     ts,
			At:     "2025-01-01T00:00:00.000Z",
			Online: online,
		},
	}

	if online {
		rec.LatencyMs = models.Int64Ptr(ts % 100)
	} else {
		rec.Error = models.StringPtr("ECONNREFUSED")
	}

	return rec
}

func TestInsertAndGetNodeSamples(t *testing.T) {
	ctx := context.Background()
	svc := newTestDB(t)

	for _, rec := range []*SampleRecord{
		record(1, 3000, true),
		record(1, 1000, false),
		record(2, 1500, true),
		record(1, 2000, true),
	} {
		require.NoError(t, svc.InsertSample(ctx, rec))
	}

	samples, err := svc.GetNodeSamples(ctx, 1, 1500)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, int64(2000), samples[0].TS)
	assert.Equal(t, int64(3000), samples[1].TS)
	assert.True(t, samples[0].Online)
	assert.Nil(t, samples[0].Error)
	require.NotNil(t, samples[0].LatencyMs)
	assert.Equal(t, int64(0), *samples[0].LatencyMs)

	all, err := svc.GetNodeSamples(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].Online)
	assert.Nil(t, all[0].LatencyMs)
	assert.Equal(t, "ECONNREFUSED", *all[0].Error)
}

func TestGetRecentRecords(t *testing.T) {
	ctx := context.Background()
	svc := newTestDB(t)

	maint := record(7, 500, true)
	maint.Maintenance = true
	maint.LatencyMs = nil

	require.NoError(t, svc.InsertSample(ctx, record(3, 900, true)))
	require.NoError(t, svc.InsertSample(ctx, maint))
	require.NoError(t, svc.InsertSample(ctx, record(3, 100, true)))

	recs, err := svc.GetRecentRecords(ctx, 200)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, 7, recs[0].NodeID)
	assert.True(t, recs[0].Maintenance)
	assert.Nil(t, recs[0].LatencyMs)
	assert.Equal(t, "n.example.com", recs[1].FQDN)
	assert.Equal(t, int64(2048), recs[1].MemoryMB)
	assert.Equal(t, int64(10240), recs[1].DiskMB)
}

func TestPruneBeforeBoundary(t *testing.T) {
	ctx := context.Background()
	svc := newTestDB(t)

	for _, ts := range []int64{100, 199, 200, 201, 500} {
		require.NoError(t, svc.InsertSample(ctx, record(1, ts, true)))
	}

	removed, err := svc.PruneBefore(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, err := svc.GetNodeSamples(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, left, 3)

	for _, s := range left {
		assert.GreaterOrEqual(t, s.TS, int64(200))
	}

	removed, err = svc.PruneBefore(ctx, 200)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewFailsOnUnwritablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := New(filepath.Join(blocker, "history.sqlite"))
	require.ErrorIs(t, err, ErrFailedCreateDir)
}

func TestPruneTxWrapsExecError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := NewMockTransaction(ctrl)
	tx.EXPECT().Exec(gomock.Any(), deleteBeforeSQL, int64(42)).Return(nil, errors.New("disk I/O error"))

	_, err := pruneTx(context.Background(), tx, 42)
	require.ErrorIs(t, err, ErrFailedToPrune)
}

func TestPruneTxReportsRowsAffected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := NewMockResult(ctrl)
	res.EXPECT().RowsAffected().Return(int64(9), nil)

	tx := NewMockTransaction(ctrl)
	tx.EXPECT().Exec(gomock.Any(), deleteBeforeSQL, int64(42)).Return(res, nil)

	n, err := pruneTx(context.Background(), tx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
}

func TestScanSampleError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	row := NewMockRow(ctrl)
	row.EXPECT().Scan(gomock.Any()).Return(errors.New("converting NULL to int64"))

	var s models.Sample

	err := scanSample(row, &s)
	assert.ErrorIs(t, err, ErrFailedToScan)
}
