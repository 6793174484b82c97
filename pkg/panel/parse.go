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

package panel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

var (
	errNotObject   = errors.New("node attributes are not an object")
	errMissingID   = errors.New("node id is missing")
	errInvalidID   = errors.New("node id must be positive")
	errInvalidJSON = errors.New("node attributes are not valid JSON")
)

// flexInt accepts JSON numbers, numeric strings and null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}

		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}

		*f = flexInt(v)

		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*f = flexInt(v)

	return nil
}

// parseNode turns one raw attributes object into a validated Node.
func parseNode(raw json.RawMessage) (models.Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Node{}, errNotObject
	}

	var attrs nodeAttributes
	if err := json.Unmarshal(trimmed, &attrs); err != nil {
		return models.Node{}, fmt.Errorf("%w: %w", errInvalidJSON, err)
	}

	if attrs.ID == nil {
		return models.Node{}, errMissingID
	}

	if *attrs.ID <= 0 {
		return models.Node{}, fmt.Errorf("%w: %d", errInvalidID, *attrs.ID)
	}

	node := models.Node{
		ID:           *attrs.ID,
		Name:         strings.TrimSpace(attrs.Name),
		FQDN:         strings.TrimSpace(attrs.FQDN),
		Scheme:       models.SchemeHTTP,
		BehindProxy:  attrs.BehindProxy,
		DaemonListen: int(attrs.DaemonListen),
		MemoryMB:     int64(attrs.Memory),
		DiskMB:       int64(attrs.Disk),
		Maintenance:  attrs.MaintenanceMode,
	}

	if strings.EqualFold(attrs.Scheme, models.SchemeHTTPS) {
		node.Scheme = models.SchemeHTTPS
	}

	node.Name = node.DisplayName()

	return node, nil
}
