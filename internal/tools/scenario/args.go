package scenario

import (
	"strings"
)

func requiredString(args map[string]any, key string) string {
	return optionalString(args, key, "")
}

func optionalString(args map[string]any, key, fallback string) string {
	text, ok := args[key].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

func readInt(args map[string]any, key string) (int, bool) {
	switch typed := args[key].(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := readInt(args, key); ok {
		return value
	}
	return fallback
}

func readFloat(args map[string]any, key string) (float64, bool) {
	switch typed := args[key].(type) {
	case int:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func readBool(args map[string]any, key string) (bool, bool) {
	switch typed := args[key].(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	if value, ok := readBool(args, key); ok {
		return value
	}
	return fallback
}

func readStringSlice(args map[string]any, key string) ([]string, bool) {
	value, ok := args[key]
	if !ok {
		return nil, false
	}
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			if text, ok := entry.(string); ok && strings.TrimSpace(text) != "" {
				out = append(out, strings.TrimSpace(text))
			}
		}
		return out, true
	case map[string]any:
		// An empty Lua table decodes as a map.
		return []string{}, len(typed) == 0
	}
	return nil, false
}

func readIntSlice(args map[string]any, key string) []int {
	list, _ := args[key].([]any)
	out := make([]int, 0, len(list))
	for _, entry := range list {
		switch typed := entry.(type) {
		case int:
			out = append(out, typed)
		case float64:
			out = append(out, int(typed))
		}
	}
	return out
}
