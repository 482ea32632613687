package evaluator

import (
	"math"
	"strconv"
	"strings"
)

const maxInspectDepth = 2

// inspect renders a value the way console.log shows nested values.
func inspect(v Object) string {
	return inspectValue(v, 0, map[Object]bool{})
}

func inspectNested(v Object) string { return inspect(v) }

// display renders a top-level console argument: strings print raw.
func display(v Object) string {
	if s, ok := v.(*String); ok {
		return s.Value
	}
	return inspect(v)
}

func inspectValue(v Object, depth int, seen map[Object]bool) string {
	switch v := v.(type) {
	case nil:
		return "undefined"
	case *Record:
		if seen[v] {
			return "[Circular]"
		}
		if v.isError() {
			return errorSummary(v)
		}
		if v.Len() == 0 {
			return "{}"
		}
		if depth > maxInspectDepth {
			return "[Object]"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, 0, v.Len())
		for _, k := range v.keys {
			p := v.props[k]
			var val string
			switch {
			case p.Getter != nil && p.Setter != nil:
				val = "[Getter/Setter]"
			case p.Getter != nil:
				val = "[Getter]"
			case p.Setter != nil:
				val = "[Setter]"
			default:
				val = inspectValue(p.Value, depth+1, seen)
			}
			parts = append(parts, formatKey(k)+": "+val)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *Array:
		if seen[v] {
			return "[Circular]"
		}
		if len(v.Elements) == 0 {
			return "[]"
		}
		if depth > maxInspectDepth {
			return "[Array]"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, len(v.Elements))
		for i := range v.Elements {
			parts[i] = inspectValue(v.at(i), depth+1, seen)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	}
	return v.Inspect()
}

func errorSummary(r *Record) string {
	name := "Error"
	if p, ok := r.Lookup("name"); ok && !p.isAccessor() {
		name = toDisplayString(p.Value)
	}
	msg := ""
	if p, ok := r.Lookup("message"); ok && !p.isAccessor() {
		msg = toDisplayString(p.Value)
	}
	if msg == "" {
		return name
	}
	return name + ": " + msg
}

func toDisplayString(v Object) string {
	if s, ok := v.(*String); ok {
		return s.Value
	}
	if v == nil {
		return ""
	}
	return v.Inspect()
}

func formatKey(k string) string {
	if isIdentifierName(k) {
		return k
	}
	return quoteString(k)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func quoteString(s string) string {
	q := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// formatNumber follows Number.prototype.toString for radix 10.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + string(sign) + exp
}

// formatConsole applies printf-style substitutions (%s %d %i %f %o %O %j
// %%) from a leading format string, then appends the remaining arguments.
func formatConsole(args []Object) string {
	if len(args) == 0 {
		return ""
	}
	first, ok := args[0].(*String)
	if !ok || !strings.Contains(first.Value, "%") {
		return joinDisplay(args)
	}
	rest := args[1:]
	fmtStr := first.Value
	var b strings.Builder
	for i := 0; i < len(fmtStr); i++ {
		c := fmtStr[i]
		if c != '%' || i+1 >= len(fmtStr) {
			b.WriteByte(c)
			continue
		}
		verb := fmtStr[i+1]
		if verb == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if !strings.ContainsRune("sdifoOj", rune(verb)) || len(rest) == 0 {
			b.WriteByte(c)
			continue
		}
		v := rest[0]
		rest = rest[1:]
		i++
		switch verb {
		case 's':
			b.WriteString(display(v))
		case 'i':
			b.WriteString(formatNumber(math.Trunc(toNumber(v))))
		case 'd', 'f':
			b.WriteString(formatNumber(toNumber(v)))
		default:
			b.WriteString(inspect(v))
		}
	}
	out := b.String()
	if len(rest) > 0 {
		out += " " + joinDisplay(rest)
	}
	return out
}

func joinDisplay(args []Object) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = display(a)
	}
	return strings.Join(parts, " ")
}
