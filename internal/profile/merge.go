package profile

import (
	"sort"
	"strings"

	"github.com/ateliergo/atelier/internal/models"
)

// DiffFields compares two flattened profile snapshots and returns the keys the
// AI actually contributed: present in after with a non-empty, non-placeholder
// value that differs from before. Protected metadata never appears in a diff.
func DiffFields(before, after map[string]string) map[string]string {
	diff := make(map[string]string)
	for key, value := range after {
		if models.IsProtectedField(key) {
			continue
		}
		if isEmptyValue(value) {
			continue
		}
		if prev, ok := before[key]; ok && prev == value {
			continue
		}
		diff[key] = value
	}
	return diff
}

// isEmptyValue reports whether an AI-returned value carries no information.
func isEmptyValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "null", "none":
		return true
	}
	return false
}

// sortedKeys returns the map's keys in deterministic order for logging.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
