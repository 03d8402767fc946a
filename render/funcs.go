package render

import (
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"
)

// DefaultFuncMap returns the functions every Loader provides to its
// templates. Callers may modify the returned map.
func DefaultFuncMap() template.FuncMap {
	funcs := template.FuncMap{
		"snake":      toSnakeCase,
		"camel":      toCamelCase,
		"pascal":     toPascalCase,
		"kebab":      toKebabCase,
		"plural":     pluralize,
		"singular":   singularize,
		"identifier": identifier,
		"quote":      strconv.Quote,
		"comment":    comment,
		"indent":     indentLines,
		"default":    defaultValue,
		"ternary":    ternary,
		"uuid":       uuid.NewString,
	}
	// Thin wrappers over package strings keep their Go names.
	for name, fn := range map[string]any{
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
		"trimPrefix": strings.TrimPrefix,
		"trimSuffix": strings.TrimSuffix,
		"replace":    strings.ReplaceAll,
		"split":      strings.Split,
		"join":       strings.Join,
		"contains":   strings.Contains,
		"hasPrefix":  strings.HasPrefix,
		"hasSuffix":  strings.HasSuffix,
		"repeat":     strings.Repeat,
	} {
		funcs[name] = fn
	}
	return funcs
}

// defaultValue returns given unless it is nil or an empty string.
func defaultValue(def, given any) any {
	if given == nil {
		return def
	}
	if s, ok := given.(string); ok && s == "" {
		return def
	}
	if v := reflect.ValueOf(given); v.Kind() == reflect.Pointer && v.IsNil() {
		return def
	}
	return given
}

func ternary(cond bool, then, otherwise any) any {
	if cond {
		return then
	}
	return otherwise
}
