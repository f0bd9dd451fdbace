package utils

import (
	"fmt"
	"reflect"
	"slices"
)

var ColumnTag = "db"

// Columns returns the db tag of every exported field of input, in
// declaration order. Fields tagged "-" or untagged are skipped.
func Columns(input any) []string {
	value := structValue(input)
	valueType := value.Type()

	result := make([]string, 0, value.NumField())
	for i := 0; i < value.NumField(); i++ {
		if tag, ok := columnTag(valueType.Field(i)); ok {
			result = append(result, tag)
		}
	}

	return result
}

// ColumnMap maps each db tag of input to its field value. Columns listed in
// omit are left out, which is how updates keep id and created_at untouched.
func ColumnMap(input any, omit ...string) map[string]any {
	value := structValue(input)
	valueType := value.Type()

	result := make(map[string]any, value.NumField())
	for i := 0; i < value.NumField(); i++ {
		tag, ok := columnTag(valueType.Field(i))
		if !ok || slices.Contains(omit, tag) {
			continue
		}
		result[tag] = value.Field(i).Interface()
	}

	return result
}

func structValue(input any) reflect.Value {
	value := reflect.ValueOf(input)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return value
}

func columnTag(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}

	tag := field.Tag.Get(ColumnTag)
	if tag == "" || tag == "-" {
		return "", false
	}

	return tag, true
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
