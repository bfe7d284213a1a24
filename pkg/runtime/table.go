package runtime

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

// TableKey is a normalized table key: an integer or a string.
type TableKey struct {
	Int      int64
	Str      string
	IsString bool
}

func IntKey(n int64) TableKey { return TableKey{Int: n} }

func StringKey(s string) TableKey { return TableKey{Str: s, IsString: true} }

func (k TableKey) Value() Value {
	if k.IsString {
		return StringValue{Val: k.Str}
	}
	return IntValue{Val: k.Int}
}

func (k TableKey) String() string {
	if k.IsString {
		return strconv.Quote(k.Str)
	}
	return strconv.FormatInt(k.Int, 10)
}

// InvalidKeyError reports a value that cannot index a table.
type InvalidKeyError struct {
	Key Value
}

func (e *InvalidKeyError) Error() string {
	if f, ok := e.Key.(FloatValue); ok {
		return fmt.Sprintf("invalid table key %v: float keys must be integral", f.Val)
	}
	return fmt.Sprintf("invalid table key of kind %s", TypeName(e.Key))
}

// KeyOf normalizes v into a TableKey. Floats with an exact integer value
// become integer keys.
func KeyOf(v Value) (TableKey, error) {
	switch val := v.(type) {
	case IntValue:
		return IntKey(val.Val), nil
	case StringValue:
		return StringKey(val.Val), nil
	case FloatValue:
		if val.Val == math.Trunc(val.Val) && !math.IsInf(val.Val, 0) &&
			val.Val >= math.MinInt64 && val.Val < math.MaxInt64 {
			return IntKey(int64(val.Val)), nil
		}
	}
	return TableKey{}, &InvalidKeyError{Key: v}
}

// TableEntry is one key/value pair of a snapshot.
type TableEntry struct {
	Key   TableKey
	Value Value
}

// Table is the language's only aggregate. Every method holds the table's
// lock for exactly one step; callers composing several steps get no
// atomicity across them.
type Table struct {
	mu      sync.RWMutex
	keys    []TableKey
	entries map[TableKey]Value
	meta    *Table
}

func NewTable() *Table {
	return &Table{entries: make(map[TableKey]Value)}
}

func (t *Table) Kind() Kind { return KindTable }

// RawGet reads key without consulting the metatable.
func (t *Table) RawGet(key TableKey) (Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

// RawSet writes key without consulting the metatable. A nil value removes
// the key.
func (t *Table) RawSet(key TableKey, value Value) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(key, value)
}

// SetExisting overwrites key only when it is already present and reports
// whether it did. Assignment uses it so the presence check and the write
// form one step.
func (t *Table) SetExisting(key TableKey, value Value) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; !ok {
		return false
	}
	t.setLocked(key, value)
	return true
}

func (t *Table) setLocked(key TableKey, value Value) {
	_, exists := t.entries[key]
	if IsNil(value) {
		if !exists {
			return
		}
		delete(t.entries, key)
		for i, k := range t.keys {
			if k == key {
				t.keys = append(t.keys[:i], t.keys[i+1:]...)
				break
			}
		}
		return
	}
	if !exists {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = value
}

// Len returns the border: the number of consecutive integer keys present
// starting at 1.
func (t *Table) Len() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n int64
	for {
		if _, ok := t.entries[IntKey(n+1)]; !ok {
			return n
		}
		n++
	}
}

// Count returns the number of entries.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []TableKey {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TableKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// Entries returns a snapshot of the entries in insertion order.
func (t *Table) Entries() []TableEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TableEntry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, TableEntry{Key: k, Value: t.entries[k]})
	}
	return out
}

func (t *Table) Metatable() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta
}

// SetMetatable replaces the metatable; nil clears it.
func (t *Table) SetMetatable(mt *Table) {
	t.mu.Lock()
	t.meta = mt
	t.mu.Unlock()
}

// Metamethod looks name up in the metatable's raw entries.
func (t *Table) Metamethod(name string) (Value, bool) {
	mt := t.Metatable()
	if mt == nil {
		return nil, false
	}
	return mt.RawGet(StringKey(name))
}
