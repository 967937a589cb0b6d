package shell

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// VarFlag is a bitmask of per-variable attributes. Flags are OR-combined:
// a later Set never clears a flag an earlier call established.
type VarFlag uint8

const (
	// FlagExported marks a variable for inclusion in the child environment
	// vector built by BuildEnv.
	FlagExported VarFlag = 1 << iota
	// FlagReadonly marks a variable that cannot be modified or removed.
	FlagReadonly
)

// Variable is a name/value pair with a flag set. Its value is always a
// concrete string — an unset variable simply has no Variable entry.
type Variable struct {
	Name  string
	Value string
	Flags VarFlag
}

// Exported reports whether v should appear in the child environment.
func (v Variable) Exported() bool { return v.Flags&FlagExported != 0 }

// Readonly reports whether v rejects further Set/Unset calls.
func (v Variable) Readonly() bool { return v.Flags&FlagReadonly != 0 }

var (
	// ErrNotIdentifier is returned by Set when name fails the identifier
	// grammar in §3.
	ErrNotIdentifier = errors.New("not a legal identifier")
	// ErrReadonly is returned by Set and Unset against a readonly variable.
	ErrReadonly = errors.New("readonly variable")
)

type varEntry struct {
	v    Variable
	next *varEntry
}

// VarTable is the shell's variable mapping. Bucket count is kept a power of
// two and doubled whenever the load factor would reach 0.75, per §3's
// invariant on the table's internal layout — a bare map[string]string can't
// express that constraint, so the table owns its own chained buckets.
type VarTable struct {
	buckets []*varEntry
	count   int
}

const initialBucketCount = 8

// NewVarTable returns an empty table.
func NewVarTable() *VarTable {
	return &VarTable{buckets: make([]*varEntry, initialBucketCount)}
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

func (t *VarTable) bucketIndex(name string) int {
	return int(hashName(name) & uint64(len(t.buckets)-1))
}

// Get returns the current value of name, if any.
func (t *VarTable) Get(name string) (Variable, bool) {
	for e := t.buckets[t.bucketIndex(name)]; e != nil; e = e.next {
		if e.v.Name == name {
			return e.v, true
		}
	}
	return Variable{}, false
}

// Set assigns value to name, creating the entry if absent. Flags are merged
// into any existing flag set; a readonly entry rejects the assignment
// outright. name must satisfy the identifier grammar.
func (t *VarTable) Set(name, value string, flags VarFlag) error {
	if !isValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrNotIdentifier, name)
	}
	idx := t.bucketIndex(name)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.v.Name == name {
			if e.v.Readonly() {
				return fmt.Errorf("%s: %w", name, ErrReadonly)
			}
			e.v.Value = value
			e.v.Flags |= flags
			return nil
		}
	}
	t.insert(Variable{Name: name, Value: value, Flags: flags})
	return nil
}

func (t *VarTable) insert(v Variable) {
	if 4*(t.count+1) >= 3*len(t.buckets) {
		t.rehash()
	}
	idx := t.bucketIndex(v.Name)
	t.buckets[idx] = &varEntry{v: v, next: t.buckets[idx]}
	t.count++
}

func (t *VarTable) rehash() {
	old := t.buckets
	t.buckets = make([]*varEntry, len(old)*2)
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := t.bucketIndex(e.v.Name)
			e.next = t.buckets[idx]
			t.buckets[idx] = e
			e = next
		}
	}
}

// Unset removes name, honoring readonly. An unknown name is a no-op that
// reports success — the source's revisions disagreed on this, and this
// specification picks the no-op behavior (see DESIGN.md).
func (t *VarTable) Unset(name string) error {
	idx := t.bucketIndex(name)
	var prev *varEntry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.v.Name == name {
			if e.v.Readonly() {
				return fmt.Errorf("%s: %w", name, ErrReadonly)
			}
			if prev == nil {
				t.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			t.count--
			return nil
		}
		prev = e
	}
	return nil
}

// Export sets the exported flag on name, creating it empty if absent —
// matching `export FOO` against an unset FOO. Unlike Set, a readonly
// variable is not rejected: readonly guards the value, not the flag set.
func (t *VarTable) Export(name string) error {
	if !isValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrNotIdentifier, name)
	}
	idx := t.bucketIndex(name)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.v.Name == name {
			e.v.Flags |= FlagExported
			return nil
		}
	}
	t.insert(Variable{Name: name, Value: "", Flags: FlagExported})
	return nil
}

// BuildEnv returns "NAME=VALUE" strings for every exported, non-empty-named
// entry. Order is unspecified, matching §4.2.
func (t *VarTable) BuildEnv() []string {
	env := make([]string, 0, t.count)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if e.v.Exported() && e.v.Name != "" {
				env = append(env, e.v.Name+"="+e.v.Value)
			}
		}
	}
	return env
}
