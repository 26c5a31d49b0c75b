package networking

import (
	"fmt"
	"reflect"
	"strconv"
)

// PrefixFieldNotFound is what is returned in the error when we cannot find a field in the map
const PrefixFieldNotFound = "could not find field in map"

func checkKeyPresent(m map[string]interface{}, key string) (interface{}, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s: %s", PrefixFieldNotFound, key)
	}

	return v, nil
}

func makeParseError(field string, dataType string, methodAPI string, value interface{}) error {
	return fmt.Errorf("could not parse the field '%s' as a %s in the response from %s: value=%v, type=%s", field, dataType, methodAPI, value, reflect.TypeOf(value))
}

// ParseString helps to parse a string value out of the map
func ParseString(m map[string]interface{}, key string, methodAPI string) (string, error) {
	v, e := checkKeyPresent(m, key)
	if e != nil {
		return "", e
	}

	s, ok := v.(string)
	if !ok {
		return "", makeParseError(key, "string", methodAPI, v)
	}

	return s, nil
}

// ParseBool helps to parse a bool value out of the map
func ParseBool(m map[string]interface{}, key string, methodAPI string) (bool, error) {
	v, e := checkKeyPresent(m, key)
	if e != nil {
		return false, e
	}

	b, ok := v.(bool)
	if !ok {
		return false, makeParseError(key, "bool", methodAPI, v)
	}

	return b, nil
}

// ParseFloat helps to parse a float value out of the map, accepting either a
// JSON number or its string representation
func ParseFloat(m map[string]interface{}, key string, methodAPI string) (float64, error) {
	v, e := checkKeyPresent(m, key)
	if e != nil {
		return 0.0, e
	}

	switch value := v.(type) {
	case float64:
		return value, nil
	case string:
		f, e := strconv.ParseFloat(value, 64)
		if e != nil {
			return 0.0, fmt.Errorf("unable to convert the string field '%s' to a number in the response from %s: value=%v, error=%s", key, methodAPI, value, e)
		}
		return f, nil
	default:
		return 0.0, makeParseError(key, "number", methodAPI, v)
	}
}

// ParseInt64 helps to parse an integer value out of the map. JSON numbers
// arrive as float64 so we convert, rejecting values with a fractional part.
func ParseInt64(m map[string]interface{}, key string, methodAPI string) (int64, error) {
	f, e := ParseFloat(m, key, methodAPI)
	if e != nil {
		return 0, e
	}

	i := int64(f)
	if float64(i) != f {
		return 0, makeParseError(key, "int64", methodAPI, f)
	}
	return i, nil
}
