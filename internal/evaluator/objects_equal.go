package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/jswalk/internal/config"
)

func isTruthy(o Object) bool {
	switch o := o.(type) {
	case *Boolean:
		return o.Value
	case *Number:
		return o.Value != 0 && !math.IsNaN(o.Value)
	case *String:
		return o.Value != ""
	}
	return !isNullish(o)
}

func typeOf(o Object) string {
	switch o.(type) {
	case *Boolean:
		return "boolean"
	case *Number:
		return "number"
	case *String:
		return "string"
	case *Function, *Builtin:
		return "function"
	}
	if o == Undefined {
		return "undefined"
	}
	return "object"
}

func isPrimitive(o Object) bool {
	switch o.(type) {
	case *Boolean, *Number, *String:
		return true
	}
	return isNullish(o)
}

// toPrimitive reduces objects to their string form; primitives pass
// through unchanged.
func toPrimitive(o Object) Object {
	if isPrimitive(o) {
		return o
	}
	return &String{Value: toString(o)}
}

func toString(o Object) string {
	switch o := o.(type) {
	case *String:
		return o.Value
	case *Number:
		return formatNumber(o.Value)
	case *Boolean:
		return o.Inspect()
	case *Array:
		parts := make([]string, len(o.Elements))
		for i := range o.Elements {
			if el := o.at(i); !isNullish(el) {
				parts[i] = toString(el)
			}
		}
		return strings.Join(parts, ",")
	case *Record:
		if o.isError() {
			return errorSummary(o)
		}
		return "[object Object]"
	case *Function:
		return "function " + o.Name + "() { [code] }"
	case *Builtin:
		return "function " + o.Name + "() { [native code] }"
	case *Promise:
		return "[object Promise]"
	case *Generator:
		return "[object Generator]"
	}
	if o == Null {
		return "null"
	}
	return "undefined"
}

func toNumber(o Object) float64 {
	switch o := o.(type) {
	case *Number:
		return o.Value
	case *Boolean:
		if o.Value {
			return 1
		}
		return 0
	case *String:
		return stringToNumber(o.Value)
	case *Array:
		return stringToNumber(toString(o))
	}
	if o == Null {
		return 0
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// ParseFloat accepts forms like "inf", "0x1p3" and "1_000" that
	// numeric strings do not.
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func toInt32(o Object) int32 {
	return int32(toUint32(o))
}

func toUint32(o Object) uint32 {
	f := toNumber(o)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// toPropertyKey converts a computed member key to its string form.
func toPropertyKey(o Object) string {
	return toString(o)
}

// arrayIndex parses canonical integer keys in [0, 2^32-2]. Larger
// numeric keys are plain property names.
func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n > config.MaxArrayIndex {
		return 0, false
	}
	return int(n), true
}

func strictEquals(a, b Object) bool {
	switch a := a.(type) {
	case *Number:
		bn, ok := b.(*Number)
		return ok && a.Value == bn.Value
	case *String:
		bs, ok := b.(*String)
		return ok && a.Value == bs.Value
	case *Boolean:
		bb, ok := b.(*Boolean)
		return ok && a.Value == bb.Value
	}
	return a == b
}

func looseEquals(a, b Object) bool {
	if a.Type() == b.Type() {
		return strictEquals(a, b)
	}
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	switch {
	case isNumberLike(a) && isNumberLike(b):
		return toNumber(a) == toNumber(b)
	case !isPrimitive(a) && isPrimitive(b):
		return looseEquals(toPrimitive(a), b)
	case isPrimitive(a) && !isPrimitive(b):
		return looseEquals(a, toPrimitive(b))
	}
	return false
}

func isNumberLike(o Object) bool {
	switch o.(type) {
	case *Number, *String, *Boolean:
		return true
	}
	return false
}
