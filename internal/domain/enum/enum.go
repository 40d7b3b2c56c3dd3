// Package enum holds the integer-backed enumerations stored on entities.
// Each one marshals to its name in JSON and to its integer in the database.
package enum

import (
	"encoding/json"
	"fmt"
)

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return names[0]
	}
	return names[i]
}

func indexOf(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// unmarshalName decodes either a name or a raw integer
func unmarshalName(data []byte, names []string, kind string) (int, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return 0, err
		}
		if i < 0 || i >= len(names) {
			return 0, fmt.Errorf("invalid %s %d", kind, i)
		}
		return i, nil
	}
	i, ok := indexOf(names, s)
	if !ok {
		return 0, fmt.Errorf("invalid %s %q", kind, s)
	}
	return i, nil
}

func scanInt(value interface{}) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	}
	return 0
}
