// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Int64 accepts a JSON number or a numeric string; the provider has sent both
// for duration and size. null and "" decode as 0. It always marshals as a number.
type Int64 int64

func (v *Int64) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	switch raw {
	case "", "null", `""`:
		*v = 0
		return nil
	}
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("integer field: %w", err)
		}
		raw = unquoted
	}
	var n json.Number
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return fmt.Errorf("integer field: invalid value %s", raw)
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("integer field: %q is not an int64", n)
	}
	*v = Int64(i)
	return nil
}
