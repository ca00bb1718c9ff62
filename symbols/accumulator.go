// Package symbols accumulates resource declarations and allocates the
// placeholder identifiers of a library R class.
//
// Declarations stream in through the Sink methods in any order. Build runs the
// allocator once over everything accumulated and returns an immutable Table
// that both emitters consume.
package symbols

import (
	"context"

	"github.com/teranos/resgen/framework"
	"github.com/teranos/resgen/res"
)

// Sink receives resource declarations. Accept calls never fail; problems are
// reported when the accumulated declarations are built.
type Sink interface {
	AcceptSimple(t res.Type, name string)
	AcceptPublic(t res.Type, name string, value *int32)
	AcceptStyleable(key string, attrs []AttrRef)
}

// AttrRef is one member of a styleable. Name is either bare ("customFlag")
// or package-qualified ("android:textColor"). Local is set when the declaring
// module also defines the attribute itself.
type AttrRef struct {
	Name  string
	Local bool
}

// record is one symbol, merged across every acceptance of its (type, name).
type record struct {
	name   string
	public bool
	// value is the first explicit value; conflicts holds later values that
	// differ from it.
	value     *int32
	conflicts []int32

	attrs     []AttrRef
	attrIndex map[string]int
}

func (r *record) pin(v int32) {
	if r.value == nil {
		r.value = &v
		return
	}
	if *r.value != v {
		r.conflicts = append(r.conflicts, v)
	}
}

func (r *record) addAttrs(attrs []AttrRef) {
	if r.attrIndex == nil {
		r.attrIndex = make(map[string]int)
	}
	for _, a := range attrs {
		if i, ok := r.attrIndex[a.Name]; ok {
			r.attrs[i].Local = r.attrs[i].Local || a.Local
			continue
		}
		r.attrIndex[a.Name] = len(r.attrs)
		r.attrs = append(r.attrs, a)
	}
}

// typeRecords keeps the records of one type in first-seen order.
type typeRecords struct {
	order []*record
	index map[string]*record
}

// Accumulator is a single-writer, append-only collection of declarations for
// one output package. It is not safe for concurrent use.
type Accumulator struct {
	resolver framework.Resolver
	types    map[res.Type]*typeRecords
}

// NewAccumulator creates an empty accumulator. resolver supplies platform
// attribute identifiers for styleables; nil means no platform attributes.
func NewAccumulator(resolver framework.Resolver) *Accumulator {
	if resolver == nil {
		resolver = framework.None
	}
	return &Accumulator{
		resolver: resolver,
		types:    make(map[res.Type]*typeRecords),
	}
}

func (a *Accumulator) lookup(t res.Type, name string) *record {
	tr, ok := a.types[t]
	if !ok {
		tr = &typeRecords{index: make(map[string]*record)}
		a.types[t] = tr
	}
	key := res.FieldName(name)
	if r, ok := tr.index[key]; ok {
		return r
	}
	r := &record{name: key}
	tr.index[key] = r
	tr.order = append(tr.order, r)
	return r
}

// AcceptSimple declares a resource whose value is synthesized.
func (a *Accumulator) AcceptSimple(t res.Type, name string) {
	a.lookup(t, name)
}

// AcceptPublic declares a public resource, optionally pinned to value.
func (a *Accumulator) AcceptPublic(t res.Type, name string, value *int32) {
	r := a.lookup(t, name)
	r.public = true
	if value != nil {
		r.pin(*value)
	}
}

// AcceptStyleable declares a styleable and its members in order. Accepting
// the same key again appends members not seen before. A package qualifier on
// key is dropped: the generated field only carries the bare name.
func (a *Accumulator) AcceptStyleable(key string, attrs []AttrRef) {
	_, bare := res.SplitQualified(key)
	a.lookup(res.Styleable, bare).addAttrs(attrs)
}

// Len returns the number of distinct symbols accepted so far.
func (a *Accumulator) Len() int {
	n := 0
	for _, tr := range a.types {
		n += len(tr.order)
	}
	return n
}

// Build allocates identifiers for everything accepted so far. It does not
// consume the accumulator: building again without further accepts yields an
// identical table.
func (a *Accumulator) Build(ctx context.Context) (*Table, error) {
	return Allocate(ctx, a.snapshot(), a.resolver)
}

// snapshot copies the accumulated records into allocator input.
func (a *Accumulator) snapshot() []Declaration {
	var decls []Declaration
	for _, t := range res.Types() {
		tr, ok := a.types[t]
		if !ok {
			continue
		}
		for _, r := range tr.order {
			d := Declaration{Type: t, Name: r.name, Public: r.public}
			if r.value != nil {
				v := *r.value
				d.Value = &v
			}
			d.Conflicts = append(d.Conflicts, r.conflicts...)
			d.Attrs = append(d.Attrs, r.attrs...)
			decls = append(decls, d)
		}
	}
	return decls
}
