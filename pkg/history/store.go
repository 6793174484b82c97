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

// Package history keeps the rolling per-node probe history in memory and
// mirrors every sample to the durable store when persistence is enabled.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/db"
	"github.com/mfreeman451/pterostatus/pkg/models"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMemoryWindow  = 24 * time.Hour
	DefaultRetention     = 7 * 24 * time.Hour
	DefaultPruneInterval = 5 * time.Minute
)

// Options configures a Store.
type Options struct {
	MemoryWindow  time.Duration
	Retention     time.Duration
	PruneInterval time.Duration

	// OnWriteError is called for every failed durable write or prune.
	OnWriteError func(err error)
}

func (o *Options) setDefaults() {
	if o.MemoryWindow <= 0 {
		o.MemoryWindow = DefaultMemoryWindow
	}

	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}

	if o.PruneInterval <= 0 {
		o.PruneInterval = DefaultPruneInterval
	}
}

// Store is the history store. Entries are replaced wholesale on every write so
// readers holding a snapshot never observe a partially updated history.
type Store struct {
	mu          sync.RWMutex
	entries     map[int]*models.NodeEntry
	durable     db.Service
	persistence bool

	pruneMu     sync.Mutex
	lastPruneAt time.Time

	opts Options
}

// NewStore creates an in-memory store. Persistence stays off until Init succeeds.
func NewStore(opts Options) *Store {
	opts.setDefaults()

	return &Store{
		entries: make(map[int]*models.NodeEntry),
		opts:    opts,
	}
}

// MemoryWindow returns the configured in-memory window.
func (s *Store) MemoryWindow() time.Duration {
	return s.opts.MemoryWindow
}

// Init attaches the durable store, prunes expired rows and loads the last
// memory window of samples into memory. It returns the at value of the newest
// loaded row, or nil when nothing was loaded. Persistence is enabled only when
// every step succeeds.
func (s *Store) Init(ctx context.Context, svc db.Service, now time.Time) (*string, error) {
	cutoff := now.Add(-s.opts.Retention).UnixMilli()

	if _, err := svc.PruneBefore(ctx, cutoff); err != nil {
		return nil, err
	}

	records, err := svc.GetRecentRecords(ctx, now.Add(-s.opts.MemoryWindow).UnixMilli())
	if err != nil {
		return nil, err
	}

	entries := make(map[int]*models.NodeEntry)

	var lastAt *string

	for i := range records {
		rec := &records[i]

		entry, ok := entries[rec.NodeID]
		if !ok {
			entry = &models.NodeEntry{Node: models.Node{ID: rec.NodeID}}
			entries[rec.NodeID] = entry
		}

		applyRecord(entry, rec)

		lastAt = models.StringPtr(rec.At)
	}

	s.mu.Lock()
	s.entries = entries
	s.durable = svc
	s.persistence = true
	s.mu.Unlock()

	s.pruneMu.Lock()
	s.lastPruneAt = now
	s.pruneMu.Unlock()

	log.WithFields(log.Fields{
		"nodes":   len(entries),
		"samples": len(records),
	}).Info("Loaded probe history from durable store")

	return lastAt, nil
}

func applyRecord(entry *models.NodeEntry, rec *db.SampleRecord) {
	if rec.NodeName != "" {
		entry.Node.Name = rec.NodeName
	}

	if entry.Node.Name == "" {
		entry.Node.Name = entry.Node.DisplayName()
	}

	if rec.FQDN != "" {
		entry.Node.FQDN = rec.FQDN
	}

	if rec.MemoryMB != 0 {
		entry.Node.MemoryMB = rec.MemoryMB
	}

	if rec.DiskMB != 0 {
		entry.Node.DiskMB = rec.DiskMB
	}

	entry.Node.Maintenance = rec.Maintenance
	entry.Online = rec.Online
	entry.LatencyMs = rec.LatencyMs
	entry.LastCheckedAt = models.StringPtr(rec.At)
	entry.History = append(entry.History, rec.Sample)
}

// PersistenceEnabled reports whether samples are mirrored to the durable store.
func (s *Store) PersistenceEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.persistence
}

// Append records the probe outcome for node at the cycle time and returns the
// stored sample. A durable write failure is logged and reported through
// OnWriteError; the in-memory history is updated regardless.
func (s *Store) Append(ctx context.Context, node *models.Node, probe *models.ProbeResult, cycle time.Time) models.Sample {
	sample := models.NewSample(node, probe, cycle)

	if svc := s.durableStore(); svc != nil {
		rec := &db.SampleRecord{
			NodeID:   node.ID,
			NodeName: node.DisplayName(),
			FQDN:     node.FQDN,
			MemoryMB: node.MemoryMB,
			DiskMB:   node.DiskMB,
			Sample:   sample,
		}

		if err := svc.InsertSample(ctx, rec); err != nil {
			log.WithFields(log.Fields{
				"node_id": node.ID,
				"node":    node.DisplayName(),
			}).WithError(err).Warn("Failed to persist probe sample")

			s.reportWriteError(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var prior []models.Sample
	if existing, ok := s.entries[node.ID]; ok {
		prior = existing.History
	}

	history := make([]models.Sample, 0, len(prior)+1)

	for _, old := range prior {
		if sample.TS-old.TS <= s.opts.MemoryWindow.Milliseconds() {
			history = append(history, old)
		}
	}

	history = append(history, sample)

	nodeCopy := *node
	if nodeCopy.Name == "" {
		nodeCopy.Name = node.DisplayName()
	}

	s.entries[node.ID] = &models.NodeEntry{
		Node:          nodeCopy,
		Online:        sample.Online,
		LatencyMs:     sample.LatencyMs,
		LastCheckedAt: models.StringPtr(sample.At),
		History:       history,
	}

	return sample
}

// MaybePrune prunes the durable store when persistence is on and the prune
// interval has elapsed since the last prune.
func (s *Store) MaybePrune(ctx context.Context, now time.Time) {
	if !s.PersistenceEnabled() {
		return
	}

	s.pruneMu.Lock()
	due := now.Sub(s.lastPruneAt) > s.opts.PruneInterval
	s.pruneMu.Unlock()

	if !due {
		return
	}

	if _, err := s.Prune(ctx, now); err != nil {
		log.WithError(err).Warn("Failed to prune probe history")
	}
}

// Prune deletes durable rows older than the retention window.
func (s *Store) Prune(ctx context.Context, now time.Time) (int64, error) {
	svc := s.durableStore()
	if svc == nil {
		return 0, nil
	}

	removed, err := svc.PruneBefore(ctx, now.Add(-s.opts.Retention).UnixMilli())
	if err != nil {
		s.reportWriteError(err)

		return 0, err
	}

	s.pruneMu.Lock()
	s.lastPruneAt = now
	s.pruneMu.Unlock()

	if removed > 0 {
		log.WithField("rows", removed).Debug("Pruned probe history")
	}

	return removed, nil
}

// Query returns the samples of one node inside window, oldest first. Windows
// within the memory window are served from memory, longer ones from the
// durable store with a fallback to memory when the read fails.
func (s *Store) Query(ctx context.Context, nodeID int, window time.Duration, now time.Time) []models.Sample {
	cutoff := now.Add(-window).UnixMilli()

	svc := s.durableStore()
	if window <= s.opts.MemoryWindow || svc == nil {
		return s.fromMemory(nodeID, cutoff)
	}

	samples, err := svc.GetNodeSamples(ctx, nodeID, cutoff)
	if err != nil {
		log.WithField("node_id", nodeID).WithError(err).Warn("Durable history read failed, using memory")

		return s.fromMemory(nodeID, cutoff)
	}

	return samples
}

func (s *Store) fromMemory(nodeID int, cutoff int64) []models.Sample {
	s.mu.RLock()
	entry, ok := s.entries[nodeID]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	out := make([]models.Sample, 0, len(entry.History))

	for _, sample := range entry.History {
		if sample.TS >= cutoff {
			out = append(out, sample)
		}
	}

	return out
}

// Retain drops every node whose id is not in ids and returns the dropped ids.
func (s *Store) Retain(ids map[int]struct{}) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []int

	for id := range s.entries {
		if _, ok := ids[id]; !ok {
			delete(s.entries, id)
			dropped = append(dropped, id)
		}
	}

	return dropped
}

// Entry returns a copy of one node's entry.
func (s *Store) Entry(nodeID int) (models.NodeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[nodeID]
	if !ok {
		return models.NodeEntry{}, false
	}

	return *entry, true
}

// Snapshot returns copies of every entry. History slices are shared with the
// store but never mutated after publication.
func (s *Store) Snapshot() []models.NodeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.NodeEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}

	return out
}

// Close detaches and closes the durable store.
func (s *Store) Close() error {
	s.mu.Lock()
	svc := s.durable
	s.durable = nil
	s.persistence = false
	s.mu.Unlock()

	if svc == nil {
		return nil
	}

	return svc.Close()
}

func (s *Store) durableStore() db.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.persistence {
		return nil
	}

	return s.durable
}

func (s *Store) reportWriteError(err error) {
	if s.opts.OnWriteError != nil {
		s.opts.OnWriteError(err)
	}
}
