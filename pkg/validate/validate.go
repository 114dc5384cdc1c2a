// Package validate checks query and request structs against `validate` tags.
//
// Rules are comma-separated; the first failing rule decides a field's
// message:
//
//	required          not zero or blank
//	nullable          skip the remaining rules when the field is empty
//	numeric           parses as a number
//	integer           parses as a whole number
//	min=N, max=N      numbers by value, strings by rune length
//	gte=N, lte=N      numeric bounds
//	between=lo,hi     inclusive numeric bounds or string length
//	in=a,b,c          one of the listed values
//
//	type ProductQuery struct {
//	    Page  int `json:"page"  validate:"gte=1"`
//	    Limit int `json:"limit" validate:"between=1,100"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Struct validates the tagged fields of v (a struct or pointer to one) and
// returns field name → message. The map is empty when v is valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	for _, f := range fieldsOf(rv.Type()) {
		value := rv.Field(f.index)
		if f.nullable && isEmpty(value) {
			continue
		}
		for _, r := range f.rules {
			if msg := r.check(f.name, r.param, value); msg != "" {
				errs[f.name] = msg
				break
			}
		}
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

type rule struct {
	param string
	check checkFunc
}

type field struct {
	index    int
	name     string
	nullable bool
	rules    []rule
}

// checkFunc returns the failure message for value, or "" when it passes.
type checkFunc func(name, param string, value reflect.Value) string

var checks = map[string]checkFunc{
	"required": func(name, _ string, v reflect.Value) string {
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", name)
		}
		return ""
	},
	"numeric": func(name, _ string, v reflect.Value) string {
		if _, err := strconv.ParseFloat(text(v), 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", name)
		}
		return ""
	},
	"integer": func(name, _ string, v reflect.Value) string {
		if _, err := strconv.ParseInt(text(v), 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", name)
		}
		return ""
	},
	"min": func(name, p string, v reflect.Value) string {
		if isNumber(v) {
			if number(v) < param(p) {
				return fmt.Sprintf("The %s must be at least %s.", name, p)
			}
		} else if length(v) < param(p) {
			return fmt.Sprintf("The %s must be at least %s characters.", name, p)
		}
		return ""
	},
	"max": func(name, p string, v reflect.Value) string {
		if isNumber(v) {
			if number(v) > param(p) {
				return fmt.Sprintf("The %s must not be greater than %s.", name, p)
			}
		} else if length(v) > param(p) {
			return fmt.Sprintf("The %s must not exceed %s characters.", name, p)
		}
		return ""
	},
	"gte": func(name, p string, v reflect.Value) string {
		if number(v) < param(p) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", name, p)
		}
		return ""
	},
	"lte": func(name, p string, v reflect.Value) string {
		if number(v) > param(p) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", name, p)
		}
		return ""
	},
	"between": func(name, p string, v reflect.Value) string {
		lo, hi, ok := strings.Cut(p, ",")
		if !ok {
			return ""
		}
		if isNumber(v) {
			if n := number(v); n < param(lo) || n > param(hi) {
				return fmt.Sprintf("The %s must be between %s and %s.", name, lo, hi)
			}
		} else if n := length(v); n < param(lo) || n > param(hi) {
			return fmt.Sprintf("The %s must be between %s and %s characters.", name, lo, hi)
		}
		return ""
	},
	"in": func(name, p string, v reflect.Value) string {
		s := text(v)
		for _, allowed := range strings.Split(p, ",") {
			if s == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", name)
	},
}

// listParams take a comma-separated parameter that runs until the next
// known rule name.
var listParams = map[string]bool{"in": true, "between": true}

var cache sync.Map // reflect.Type → []field

func fieldsOf(t reflect.Type) []field {
	if cached, ok := cache.Load(t); ok {
		return cached.([]field)
	}

	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		f := field{index: i, name: jsonName(sf)}
		for _, r := range splitRules(tag) {
			key, p, _ := strings.Cut(r, "=")
			if key == "nullable" {
				f.nullable = true
				continue
			}
			if check, ok := checks[key]; ok {
				f.rules = append(f.rules, rule{param: p, check: check})
			}
		}
		out = append(out, f)
	}

	cache.Store(t, out)
	return out
}

// splitRules splits a tag on commas, keeping list parameters together:
// "required,in=a,b,max=3" → ["required", "in=a,b", "max=3"].
func splitRules(tag string) []string {
	parts := strings.Split(tag, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if n := len(out); n > 0 && !startsRule(part) {
			if key, _, _ := strings.Cut(out[n-1], "="); listParams[key] {
				out[n-1] += "," + part
				continue
			}
		}
		out = append(out, part)
	}
	return out
}

func startsRule(s string) bool {
	key, _, _ := strings.Cut(s, "=")
	return key == "nullable" || checks[key] != nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Bool:
		return false
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func isNumber(v reflect.Value) bool {
	return v.CanInt() || v.CanUint() || v.CanFloat()
}

func number(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	f, _ := strconv.ParseFloat(text(v), 64)
	return f
}

func length(v reflect.Value) float64 {
	return float64(len([]rune(text(v))))
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func param(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
