package advice

import (
	"fmt"
	"strconv"
	"strings"
)

type fields struct {
	desc    CallDescriptor
	result  any
	err     error
	panic   bool
	elapsed int64
}

func render(tmpl string, f fields) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}

	pairs := []string{"{receiver}", f.desc.Receiver, "{method}", f.desc.Method}
	if strings.Contains(tmpl, "{args}") {
		pairs = append(pairs, "{args}", FormatArgs(f.desc.Arguments))
	}
	if strings.Contains(tmpl, "{result}") {
		pairs = append(pairs, "{result}", formatValue(f.result))
	}
	if strings.Contains(tmpl, "{error}") {
		pairs = append(pairs, "{error}", formatError(f.err, f.panic))
	}
	if strings.Contains(tmpl, "{elapsed}") {
		pairs = append(pairs, "{elapsed}", strconv.FormatInt(f.elapsed, 10))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// FormatArgs печатает аргументы в виде [a, b, c].
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

func formatError(err error, panicked bool) string {
	switch {
	case err != nil:
		return err.Error()
	case panicked:
		return "panic"
	default:
		return "unknown error"
	}
}
