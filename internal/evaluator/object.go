package evaluator

type ObjectType string

const (
	UNDEFINED_OBJ = "UNDEFINED"
	NULL_OBJ      = "NULL"
	BOOLEAN_OBJ   = "BOOLEAN"
	NUMBER_OBJ    = "NUMBER"
	STRING_OBJ    = "STRING"
	RECORD_OBJ    = "RECORD"
	ARRAY_OBJ     = "ARRAY"
	FUNCTION_OBJ  = "FUNCTION"
	BUILTIN_OBJ   = "BUILTIN"
	PROMISE_OBJ   = "PROMISE"
	GENERATOR_OBJ = "GENERATOR"

	RETURN_VALUE_OBJ    = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ = "CONTINUE_SIGNAL"
)

// Object is every value the evaluator can produce, including the internal
// control-flow signals.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type undefinedValue struct{}

func (u *undefinedValue) Type() ObjectType { return UNDEFINED_OBJ }
func (u *undefinedValue) Inspect() string  { return "undefined" }

type nullValue struct{}

func (n *nullValue) Type() ObjectType { return NULL_OBJ }
func (n *nullValue) Inspect() string  { return "null" }

var (
	Undefined Object = &undefinedValue{}
	Null      Object = &nullValue{}

	True  = &Boolean{Value: true}
	False = &Boolean{Value: false}
)

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func nativeBool(v bool) *Boolean {
	if v {
		return True
	}
	return False
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return formatNumber(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return quoteString(s.Value) }

func isNullish(o Object) bool {
	return o == Undefined || o == Null
}
