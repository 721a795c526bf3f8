package enum

import (
	"encoding/json"
	"fmt"
)

// decodeName accepts either the wire name or the numeric value of an enum.
// Names are matched against names; numbers must fall inside the table.
func decodeName(data []byte, names []string, kind string) (int, error) {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return 0, err
		}
		if i < 0 || i >= len(names) {
			return 0, fmt.Errorf("invalid %s %d", kind, i)
		}
		return i, nil
	}
	for i, name := range names {
		if name == str {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q", kind, str)
}

func scanInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func nameOf(names []string, i int, fallback string) string {
	if i < 0 || i >= len(names) {
		return fallback
	}
	return names[i]
}
