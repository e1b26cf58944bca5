package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-artificial-world/pkg/schedule"
)

// TimestampLayout is the format produced by the now and convo_timestamp
// builtins.
const TimestampLayout = "2006-01-02 15:04:05"

// RegisterBuiltins installs the standard helpers into symbols, replacing
// existing entries with the same names. A nil clock uses time.Now.
func RegisterBuiltins(symbols *Symbols, clock func() time.Time) error {
	if symbols == nil {
		return fmt.Errorf("world: symbol table is nil")
	}
	if clock == nil {
		clock = time.Now
	}

	timestamp := Function(func(...any) (any, error) {
		return clock().Format(TimestampLayout), nil
	})

	builtins := map[string]Function{
		"now":             timestamp,
		"convo_timestamp": timestamp,
		"earlierTime":     clockShift(schedule.EarlierTime),
		"laterTime":       clockShift(schedule.LaterTime),
		"comma_list":      commaList,
		"list2csv":        listToCSV,
	}

	var errs []error
	for _, name := range sortedKeys(builtins) {
		if err := symbols.Set(name, builtins[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func clockShift(shift func(string, int) (string, error)) Function {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("world: expected (time, minutes), got %d arguments", len(args))
		}
		current, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("world: time must be a string, got %T", args[0])
		}
		mins, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		return shift(current, mins)
	}
}

// commaList renders its argument as "a, b, c." with a trailing period.
func commaList(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("world: comma_list expects one list, got %d arguments", len(args))
	}
	items, err := toList(args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = FormatValue(item)
	}
	return strings.Join(parts, ", ") + ".", nil
}

// listToCSV returns lists unchanged and joins the keys of a mapping (or the
// characters of a string) with commas.
func listToCSV(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("world: list2csv expects one argument, got %d", len(args))
	}
	switch value := args[0].(type) {
	case []any, []string:
		return value, nil
	case map[string]any:
		return strings.Join(sortedKeys(value), ","), nil
	case map[string]string:
		return strings.Join(sortedKeys(value), ","), nil
	case string:
		return strings.Join(strings.Split(value, ""), ","), nil
	default:
		return nil, fmt.Errorf("world: list2csv cannot iterate %T", value)
	}
}

func toList(value any) ([]any, error) {
	switch typed := value.(type) {
	case []any:
		return typed, nil
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("world: expected a list, got %T", value)
	}
}

func toInt(value any) (int, error) {
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case int32:
		return int(typed), nil
	case uint64:
		return int(typed), nil
	case float64:
		return int(typed), nil
	case json.Number:
		n, err := typed.Int64()
		return int(n), err
	case string:
		return strconv.Atoi(strings.TrimSpace(typed))
	default:
		return 0, fmt.Errorf("world: expected minutes as a number, got %T", value)
	}
}
