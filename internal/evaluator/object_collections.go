package evaluator

// Property is one record slot: either a data value or an accessor pair.
type Property struct {
	Value  Object
	Getter Object
	Setter Object
}

func (p *Property) isAccessor() bool { return p.Getter != nil || p.Setter != nil }

// Record is a keyed object with insertion-ordered properties and an
// optional prototype.
type Record struct {
	Proto *Record
	Class string

	keys  []string
	props map[string]*Property
}

func NewRecord(proto *Record) *Record {
	return &Record{Proto: proto, Class: "Object", props: make(map[string]*Property)}
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string  { return inspect(r) }

// Own returns the slot stored directly on r.
func (r *Record) Own(key string) (*Property, bool) {
	p, ok := r.props[key]
	return p, ok
}

// Lookup walks the prototype chain.
func (r *Record) Lookup(key string) (*Property, bool) {
	for rec := r; rec != nil; rec = rec.Proto {
		if p, ok := rec.props[key]; ok {
			return p, true
		}
	}
	return nil, false
}

// Get returns the own data value for key, or undefined.
func (r *Record) Get(key string) Object {
	if p, ok := r.props[key]; ok && !p.isAccessor() && p.Value != nil {
		return p.Value
	}
	return Undefined
}

// Set stores a data value directly on r.
func (r *Record) Set(key string, val Object) {
	if p, ok := r.props[key]; ok {
		p.Value, p.Getter, p.Setter = val, nil, nil
		return
	}
	r.keys = append(r.keys, key)
	r.props[key] = &Property{Value: val}
}

// DefineGetter and DefineSetter install one half of an accessor pair,
// keeping the other half when present.
func (r *Record) DefineGetter(key string, fn Object) {
	p := r.accessorSlot(key)
	p.Getter = fn
}

func (r *Record) DefineSetter(key string, fn Object) {
	p := r.accessorSlot(key)
	p.Setter = fn
}

func (r *Record) accessorSlot(key string) *Property {
	p, ok := r.props[key]
	if !ok {
		p = &Property{}
		r.keys = append(r.keys, key)
		r.props[key] = p
		return p
	}
	if !p.isAccessor() {
		p.Value = nil
	}
	return p
}

func (r *Record) Delete(key string) bool {
	if _, ok := r.props[key]; !ok {
		return true
	}
	delete(r.props, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns own keys in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int { return len(r.keys) }

func (r *Record) isError() bool {
	for rec := r; rec != nil; rec = rec.Proto {
		if rec.Class == "Error" {
			return true
		}
	}
	return false
}

// Array is an ordered list; holes read as undefined.
type Array struct {
	Elements []Object
}

func NewArray(elems ...Object) *Array {
	return &Array{Elements: elems}
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string  { return inspect(a) }

func (a *Array) at(i int) Object {
	if i < 0 || i >= len(a.Elements) || a.Elements[i] == nil {
		return Undefined
	}
	return a.Elements[i]
}

func (a *Array) setAt(i int, v Object) {
	for len(a.Elements) <= i {
		a.Elements = append(a.Elements, Undefined)
	}
	a.Elements[i] = v
}

func (a *Array) setLength(n int) {
	if n < len(a.Elements) {
		a.Elements = a.Elements[:n]
		return
	}
	for len(a.Elements) < n {
		a.Elements = append(a.Elements, Undefined)
	}
}
