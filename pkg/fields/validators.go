package fields

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"
	"unicode"
)

// Validator reports whether a term may be searched against a field.
type Validator func(term any) bool

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidateNumeric accepts Go integers and strings made only of digits.
func ValidateNumeric(term any) bool {
	if s, ok := term.(string); ok {
		return isDigits(s)
	}
	_, ok := integerValue(term)
	return ok
}

// ValidateString rejects purely numeric terms.
func ValidateString(term any) bool {
	switch v := term.(type) {
	case string:
		return !isDigits(v)
	default:
		_, isInt := integerValue(term)
		return !isInt
	}
}

// ValidateList accepts slices and arrays, or a string holding a JSON array.
// JSON objects are rejected even though they parse.
func ValidateList(term any) bool {
	if s, ok := term.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return false
		}
		_, isList := decoded.([]any)
		return isList
	}
	if term == nil {
		return false
	}
	switch reflect.TypeOf(term).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// ValidateBoolean accepts bools, the strings "true" and "false" in any case,
// and 0 or 1 given as a string or an integer.
func ValidateBoolean(term any) bool {
	switch v := term.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(v) {
		case "true", "false", "0", "1":
			return true
		}
		return false
	}
	n, ok := integerValue(term)
	return ok && (n == 0 || n == 1)
}

// ValidateEmail accepts strings shaped like an email address.
func ValidateEmail(term any) bool {
	s, ok := term.(string)
	return ok && emailPattern.MatchString(s)
}

// ValidateNoWhitespace rejects strings with whitespace between their first and
// last characters. Non-string terms are rejected.
func ValidateNoWhitespace(term any) bool {
	s, ok := term.(string)
	if !ok {
		return false
	}
	return !strings.ContainsFunc(strings.TrimSpace(s), unicode.IsSpace)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// integerValue widens any Go integer to int64. Unsigned values that overflow
// are still reported as integers.
func integerValue(term any) (int64, bool) {
	if term == nil {
		return 0, false
	}
	v := reflect.ValueOf(term)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint()), true
	}
	return 0, false
}
