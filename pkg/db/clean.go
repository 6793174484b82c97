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
	"fmt"
)

// PruneBefore deletes every row with ts < cutoffMs and reports how many rows
// were removed.
func (db *DB) PruneBefore(ctx context.Context, cutoffMs int64) (int64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}

	removed, err := pruneTx(ctx, tx, cutoffMs)
	if err != nil {
		rollback(tx)

		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrFailedToPrune, err)
	}

	return removed, nil
}

func pruneTx(ctx context.Context, tx Transaction, cutoffMs int64) (int64, error) {
	res, err := tx.Exec(ctx, deleteBeforeSQL, cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToPrune, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToPrune, err)
	}

	return n, nil
}
