package tools

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// ArgsFromStruct maps the exported fields of a struct (or pointer to struct)
// to arguments. Names follow the json tag; the description and enum tags
// fill Description and a comma separated Enum.
func ArgsFromStruct(value any) (map[string]Arg, error) {
	rt := reflect.TypeOf(value)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tools: expected a struct, got %T", value)
	}

	args := make(map[string]Arg, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		arg := Arg{
			Type:        jsonType(field.Type),
			Description: field.Tag.Get("description"),
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, item := range strings.Split(enum, ",") {
				arg.Enum = append(arg.Enum, strings.TrimSpace(item))
			}
		}
		args[name] = arg
	}
	return args, nil
}

func jsonType(rt reflect.Type) string {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return "string"
		}
		return "array"
	case reflect.Map:
		return "object"
	case reflect.Struct:
		if rt == timeType {
			return "string"
		}
		return "object"
	default:
		return "string"
	}
}
