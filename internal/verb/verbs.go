package verb

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"
)

func toEqual(subject, expected any) error {
	if cmp.Equal(subject, expected, CmpOptions()...) {
		return nil
	}
	return fmt.Errorf(
		"expected %+v to equal %+v\ndiff (-expected +subject):\n%s",
		subject,
		expected,
		cmp.Diff(expected, subject, CmpOptions()...),
	)
}

func toBe(subject, expected any) error {
	if subject == nil || expected == nil {
		if subject == nil && expected == nil {
			return nil
		}
		return fmt.Errorf("expected %+v to be %+v", subject, expected)
	}
	st, et := reflect.TypeOf(subject), reflect.TypeOf(expected)
	if st != et {
		return fmt.Errorf("expected %+v (%T) to be %+v (%T)", subject, subject, expected, expected)
	}
	if !st.Comparable() {
		return fmt.Errorf("values of type %T can not be compared by identity", subject)
	}
	if subject != expected {
		return fmt.Errorf("expected %+v to be %+v", subject, expected)
	}
	return nil
}

func toBeNil(subject any) error {
	if isNil(subject) {
		return nil
	}
	return fmt.Errorf("expected %+v to be nil", subject)
}

func toContain(subject, expected any) error {
	switch s := subject.(type) {
	case string:
		needle, ok := expected.(string)
		if !ok {
			return fmt.Errorf("expected value to be a string, got %T", expected)
		}
		if strings.Contains(s, needle) {
			return nil
		}
		return fmt.Errorf("expected %q to contain %q", s, needle)
	case []byte:
		needle, ok := expected.([]byte)
		if !ok {
			return fmt.Errorf("expected value to be a []byte, got %T", expected)
		}
		if bytes.Contains(s, needle) {
			return nil
		}
		return fmt.Errorf("expected %q to contain %q", s, needle)
	}

	rv := reflect.ValueOf(subject)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if cmp.Equal(rv.Index(i).Interface(), expected, CmpOptions()...) {
				return nil
			}
		}
		return fmt.Errorf("expected %+v to contain %+v", subject, expected)
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if cmp.Equal(k.Interface(), expected, CmpOptions()...) {
				return nil
			}
		}
		return fmt.Errorf("expected %+v to contain key %+v", subject, expected)
	default:
		return fmt.Errorf("values of type %T can not contain other values", subject)
	}
}

func toMatch(subject, expected any) error {
	var re *regexp.Regexp
	switch p := expected.(type) {
	case *regexp.Regexp:
		re = p
	case string:
		var err error
		re, err = regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	default:
		return fmt.Errorf("expected a pattern, got %T", expected)
	}

	var text string
	switch s := subject.(type) {
	case string:
		text = s
	case []byte:
		text = string(s)
	case fmt.Stringer:
		text = s.String()
	default:
		return fmt.Errorf("values of type %T can not be matched against a pattern", subject)
	}

	if !re.MatchString(text) {
		return fmt.Errorf("expected %q to match %s", text, re.String())
	}
	return nil
}

func toHaveLength(subject, expected any) error {
	want, ok := toInt(expected)
	if !ok {
		return fmt.Errorf("expected length must be an integer, got %T", expected)
	}
	if subject == nil {
		return errors.New("nil values have no length")
	}
	rv := reflect.ValueOf(subject)
	switch rv.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		if rv.Len() != want {
			return fmt.Errorf("expected %+v to have length %d, got %d", subject, want, rv.Len())
		}
		return nil
	default:
		if l, ok := subject.(interface{ Len() int }); ok {
			if l.Len() != want {
				return fmt.Errorf("expected %+v to have length %d, got %d", subject, want, l.Len())
			}
			return nil
		}
		return fmt.Errorf("values of type %T have no length", subject)
	}
}

func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	default:
		return 0, false
	}
}
