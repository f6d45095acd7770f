package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// FilterFalsyParams drops nil values, typed nil pointers and empty strings.
// Zero numbers and false are kept: they are meaningful filter values.
func FilterFalsyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if isFalsy(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isFalsy(rv.Elem().Interface())
	}
	return false
}

// EncodeQuery strips falsy params and renders the rest as url.Values.
func EncodeQuery(params map[string]any) url.Values {
	values := url.Values{}
	filtered := FilterFalsyParams(params)
	keys := make([]string, 0, len(filtered))
	for k := range filtered {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set(k, formatParam(filtered[k]))
	}
	return values
}

func formatParam(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		v = rv.Elem().Interface()
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
