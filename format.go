package world

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`[\n\r\t]+`)

// FormatValue renders a resolved value for substitution into a template.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return collapseWhitespace(typed)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return fmt.Sprint(typed)
	case []any:
		return joinFormatted(len(typed), func(i int) any { return typed[i] })
	case []string:
		return joinFormatted(len(typed), func(i int) any { return typed[i] })
	case map[string]any:
		return formatMapping(typed)
	case map[string]string:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[key] = item
		}
		return formatMapping(converted)
	case Mapping:
		return formatMapping(typed)
	case Record:
		return ""
	case fmt.Stringer:
		return collapseWhitespace(typed.String())
	case error:
		return collapseWhitespace(typed.Error())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		return joinFormatted(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return formatMapping(reflectMapping{rv}.entries())
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return FormatValue(rv.Elem().Interface())
	}
	return collapseWhitespace(fmt.Sprint(value))
}

func joinFormatted(n int, at func(int) any) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = FormatValue(at(i))
	}
	return strings.Join(parts, ", ")
}

func formatMapping(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + ": " + FormatValue(m[key])
	}
	return strings.Join(parts, ", ")
}

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
