package command

import (
	"fmt"
	"strings"

	"github.com/mj1618/docbind/internal/platform"
)

// params normalizes a request payload into a map. A bare string becomes
// {key: s}.
func paramsOf(data any, key string) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = val
		}
		return out
	case string:
		return map[string]any{key: v}
	default:
		return map[string]any{}
	}
}

func stringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			if strings.TrimSpace(s) == "" {
				return defaultVal
			}
			return s
		}
		// YAML and JSON may hand numbers where a string is expected
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

// optionalInt distinguishes an absent key from an explicit value.
func optionalInt(params map[string]any, key string) (int, bool) {
	switch n := params[key].(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func floatParam(params map[string]any, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func mapParam(params map[string]any, key string) map[string]any {
	switch v := params[key].(type) {
	case map[string]any, map[any]any:
		return paramsOf(v, "")
	}
	return nil
}

func stringsParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = cellString(s)
		}
		return out
	}
	return nil
}

func rowsParam(params map[string]any, key string) [][]string {
	switch v := params[key].(type) {
	case [][]string:
		return v
	case []any:
		out := make([][]string, 0, len(v))
		for _, row := range v {
			switch r := row.(type) {
			case []any:
				cells := make([]string, len(r))
				for i, c := range r {
					cells[i] = cellString(c)
				}
				out = append(out, cells)
			case []string:
				out = append(out, r)
			default:
				out = append(out, []string{cellString(r)})
			}
		}
		return out
	}
	return nil
}

func colorParam(params map[string]any, key string, def platform.RGB) platform.RGB {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	return platform.ParseColor(v, def)
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if c == float64(int64(c)) {
			return fmt.Sprintf("%d", int64(c))
		}
		return fmt.Sprintf("%g", c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
