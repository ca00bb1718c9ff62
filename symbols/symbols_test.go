package symbols

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/resgen/errors"
	"github.com/teranos/resgen/framework"
	"github.com/teranos/resgen/res"
)

func int32p(v int32) *int32 { return &v }

// testFramework is the platform attribute table used across these tests.
func testFramework() framework.Table {
	t := make(framework.Table)
	t.Add(res.Attr, "textColor", 0x01010098)
	t.Add(res.Attr, "textSize", 0x01010095)
	t.Add(res.Attr, "layout_width", 0x010100f4)
	return t
}

func build(t *testing.T, acc *Accumulator) *Table {
	t.Helper()
	table, err := acc.Build(context.Background())
	require.NoError(t, err)
	return table
}

func TestTypeID(t *testing.T) {
	assert.Equal(t, int32(0x01), TypeID(res.Attr))
	assert.Equal(t, int32(0x02), TypeID(res.Anim))

	seen := make(map[int32]res.Type)
	for _, typ := range res.Types() {
		id := TypeID(typ)
		other, dup := seen[id]
		assert.False(t, dup, "%s and %s share type id 0x%02x", typ, other, id)
		seen[id] = typ
	}
	assert.Equal(t, int32(0x7f010000), Placeholder(res.Attr, 0))
}

func TestSimpleString(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.String, "app_name")

	table := build(t, acc)
	require.Len(t, table.Groups, 1)
	assert.Equal(t, res.String, table.Groups[0].Type)

	f, ok := table.Lookup(res.String, "app_name")
	require.True(t, ok)
	assert.False(t, f.IsArray())
	assert.GreaterOrEqual(t, f.Value, int32(0))
	assert.Equal(t, Placeholder(res.String, 0), f.Value)
}

// Pinned values are emitted exactly
func TestPublicExplicitValue(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.Drawable, "background")
	acc.AcceptPublic(res.Drawable, "icon", int32p(0x7f020001))
	acc.AcceptSimple(res.Drawable, "logo")

	table := build(t, acc)
	f, ok := table.Lookup(res.Drawable, "icon")
	require.True(t, ok)
	assert.Equal(t, int32(0x7f020001), f.Value)
}

func TestExplicitValueIndependentOfOrder(t *testing.T) {
	orders := [][]string{
		{"icon", "a", "b"},
		{"a", "icon", "b"},
		{"a", "b", "icon"},
	}
	for _, order := range orders {
		acc := NewAccumulator(nil)
		for _, name := range order {
			if name == "icon" {
				acc.AcceptPublic(res.Drawable, name, int32p(0x7f090002))
			} else {
				acc.AcceptSimple(res.Drawable, name)
			}
		}
		table := build(t, acc)
		f, _ := table.Lookup(res.Drawable, "icon")
		assert.Equal(t, int32(0x7f090002), f.Value, "order %v", order)
	}
}

func TestSynthesizedValuesAvoidPinned(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.ID, "first")
	acc.AcceptPublic(res.ID, "pinned", int32p(Placeholder(res.ID, 1)))
	acc.AcceptSimple(res.ID, "second")
	acc.AcceptSimple(res.ID, "third")

	table := build(t, acc)
	g, ok := table.Group(res.ID)
	require.True(t, ok)

	seen := make(map[int32]string)
	for _, f := range g.Fields {
		other, dup := seen[f.Value]
		assert.False(t, dup, "%s and %s share 0x%x", f.Name, other, f.Value)
		seen[f.Value] = f.Name
	}
	second, _ := table.Lookup(res.ID, "second")
	assert.Equal(t, Placeholder(res.ID, 2), second.Value)
}

func TestIdempotentRedeclaration(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.String, "app_name")
	acc.AcceptSimple(res.String, "app_name")
	acc.AcceptPublic(res.String, "app_name", nil)
	acc.AcceptSimple(res.String, "title")

	table := build(t, acc)
	g, _ := table.Group(res.String)
	require.Len(t, g.Fields, 2)
	assert.Equal(t, "app_name", g.Fields[0].Name)
	assert.Equal(t, "title", g.Fields[1].Name)
	assert.Equal(t, 2, acc.Len())
}

func TestSimpleUpgradedToPublic(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.Color, "primary")
	acc.AcceptSimple(res.Color, "accent")
	acc.AcceptPublic(res.Color, "primary", int32p(0x7f050010))
	acc.AcceptSimple(res.Color, "primary")
	acc.AcceptPublic(res.Color, "primary", int32p(0x7f050010))

	table := build(t, acc)
	g, _ := table.Group(res.Color)
	require.Len(t, g.Fields, 2)
	assert.Equal(t, "primary", g.Fields[0].Name, "first-seen order is kept")
	assert.Equal(t, int32(0x7f050010), g.Fields[0].Value)
}

func TestConflictingExplicitValues(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptPublic(res.ID, "foo", int32p(5))
	acc.AcceptPublic(res.ID, "foo", int32p(6))

	_, err := acc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
	assert.Contains(t, err.Error(), "foo")
	assert.Contains(t, err.Error(), "0x00000005")
	assert.Contains(t, err.Error(), "0x00000006")
	assert.NotEmpty(t, errors.GetAllDetails(err))
}

func TestSameValuePinnedByTwoNames(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptPublic(res.ID, "foo", int32p(0x7f0b0001))
	acc.AcceptPublic(res.ID, "bar", int32p(0x7f0b0001))

	_, err := acc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
	assert.Contains(t, err.Error(), "foo")
	assert.Contains(t, err.Error(), "bar")
}

func TestSameValueAcrossTypesIsAllowed(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptPublic(res.ID, "foo", int32p(7))
	acc.AcceptPublic(res.String, "foo", int32p(7))

	_, err := acc.Build(context.Background())
	assert.NoError(t, err, "identifiers are unique per type only")
}

func TestNegativeExplicitValue(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptPublic(res.ID, "foo", int32p(-2))

	_, err := acc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsInvalidDeclarationError(err))
}

func TestStyleableWithExplicitValue(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptPublic(res.Styleable, "MyView", int32p(1))

	_, err := acc.Build(context.Background())
	assert.True(t, errors.IsInvalidDeclarationError(err))
}

// Local attrs are never synthesized from a styleable reference
func TestStyleableMissingLocalAttr(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptStyleable("MyView", []AttrRef{
		{Name: "textColor", Local: false},
		{Name: "customFlag", Local: true},
	})

	_, err := acc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAttrLookupError(err))
	assert.Contains(t, err.Error(), "customFlag")
}

func TestStyleableWithLocalAttr(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptStyleable("MyView", []AttrRef{
		{Name: "textColor", Local: false},
		{Name: "customFlag", Local: true},
	})
	acc.AcceptSimple(res.Attr, "customFlag")

	table := build(t, acc)
	customFlag, ok := table.Lookup(res.Attr, "customFlag")
	require.True(t, ok)

	myView, ok := table.Lookup(res.Styleable, "MyView")
	require.True(t, ok)
	assert.Equal(t, []int32{0x01010098, customFlag.Value}, myView.Array)
}

func TestStyleableFrameworkAttrWithoutLocalFlag(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptSimple(res.Attr, "customFlag")
	acc.AcceptStyleable("MyView", []AttrRef{{Name: "customFlag", Local: false}})

	_, err := acc.Build(context.Background())
	require.Error(t, err, "an unflagged member must come from the platform")
	assert.True(t, errors.IsAttrLookupError(err))
}

func TestStyleableQualifiedFrameworkAttr(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptStyleable("com.example:MyView", []AttrRef{{Name: "android:layout_width"}})

	table := build(t, acc)
	myView, ok := table.Lookup(res.Styleable, "MyView")
	require.True(t, ok)
	assert.Equal(t, []int32{0x010100f4}, myView.Array)
}

func TestStyleableOrderIsDeclarationOrder(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptSimple(res.Attr, "c")
	acc.AcceptSimple(res.Attr, "b")
	acc.AcceptSimple(res.Attr, "a")
	acc.AcceptStyleable("Ordered", []AttrRef{
		{Name: "a", Local: true},
		{Name: "textSize"},
		{Name: "b", Local: true},
		{Name: "textColor"},
		{Name: "c", Local: true},
	})

	table := build(t, acc)
	a, _ := table.Lookup(res.Attr, "a")
	b, _ := table.Lookup(res.Attr, "b")
	c, _ := table.Lookup(res.Attr, "c")
	ordered, _ := table.Lookup(res.Styleable, "Ordered")
	assert.Equal(t, []int32{a.Value, 0x01010095, b.Value, 0x01010098, c.Value}, ordered.Array)
}

func TestStyleableRedeclarationMergesMembers(t *testing.T) {
	acc := NewAccumulator(testFramework())
	acc.AcceptSimple(res.Attr, "customFlag")
	acc.AcceptStyleable("MyView", []AttrRef{{Name: "textColor"}})
	acc.AcceptStyleable("MyView", []AttrRef{{Name: "textColor"}, {Name: "customFlag", Local: true}})

	table := build(t, acc)
	customFlag, _ := table.Lookup(res.Attr, "customFlag")
	myView, _ := table.Lookup(res.Styleable, "MyView")
	assert.Equal(t, []int32{0x01010098, customFlag.Value}, myView.Array)
}

func TestEmptyStyleable(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptStyleable("Empty", nil)

	table := build(t, acc)
	f, ok := table.Lookup(res.Styleable, "Empty")
	require.True(t, ok)
	assert.True(t, f.IsArray())
	assert.Empty(t, f.Array)
}

func TestResolverFailureIsAttrLookup(t *testing.T) {
	boom := errors.New("android.jar: zip: not a valid zip file")
	failing := framework.ResolverFunc(func(context.Context, res.Type, string) (int32, bool, error) {
		return 0, false, boom
	})
	acc := NewAccumulator(failing)
	acc.AcceptStyleable("MyView", []AttrRef{{Name: "textColor"}})

	table, err := acc.Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, table, "no partial output")
	assert.True(t, errors.IsAttrLookupError(err))
	assert.True(t, errors.Is(err, boom))
}

func TestTypesInCanonicalOrder(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.XML, "prefs")
	acc.AcceptSimple(res.String, "app_name")
	acc.AcceptStyleable("MyView", nil)
	acc.AcceptSimple(res.Attr, "customFlag")
	acc.AcceptSimple(res.Anim, "fade")

	table := build(t, acc)
	var got []res.Type
	for _, g := range table.Groups {
		got = append(got, g.Type)
	}
	assert.Equal(t, []res.Type{res.Anim, res.Attr, res.String, res.Styleable, res.XML}, got)
}

func TestNamesNormalized(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.AcceptSimple(res.Style, "Theme.App")
	acc.AcceptSimple(res.Style, "Theme_App")

	table := build(t, acc)
	g, _ := table.Group(res.Style)
	require.Len(t, g.Fields, 1, "names that normalize alike are one field")
	assert.Equal(t, "Theme_App", g.Fields[0].Name)
}

func TestBuildIsDeterministic(t *testing.T) {
	populate := func() *Accumulator {
		acc := NewAccumulator(testFramework())
		acc.AcceptSimple(res.String, "b")
		acc.AcceptSimple(res.String, "a")
		acc.AcceptPublic(res.ID, "x", int32p(0x7f0b0000))
		acc.AcceptSimple(res.ID, "y")
		acc.AcceptSimple(res.Attr, "customFlag")
		acc.AcceptStyleable("MyView", []AttrRef{{Name: "customFlag", Local: true}, {Name: "textColor"}})
		return acc
	}

	acc := populate()
	first := build(t, acc)
	second := build(t, acc)
	third := build(t, populate())

	assert.Empty(t, Diff(first, second))
	assert.Empty(t, Diff(first, third))
	assert.Equal(t, first, third)
}

func TestAllocateTooManyEntries(t *testing.T) {
	decls := make([]Declaration, maxEntryID+2)
	for i := range decls {
		decls[i] = Declaration{Type: res.ID, Name: "id" + string(rune('a'+i%26)) + string(rune('0'+i%10))}
	}
	_, err := Allocate(context.Background(), decls, nil)
	assert.True(t, errors.IsInvalidDeclarationError(err))
}

func TestDiff(t *testing.T) {
	base := &Table{Groups: []Group{
		{Type: res.Attr, Fields: []Field{{Name: "a", Value: 1}}},
		{Type: res.Styleable, Fields: []Field{{Name: "S", Array: []int32{1, 2}}}},
	}}
	assert.Empty(t, Diff(base, base))

	changed := &Table{Groups: []Group{
		{Type: res.Attr, Fields: []Field{{Name: "a", Value: 2}}},
		{Type: res.Styleable, Fields: []Field{{Name: "S", Array: []int32{2, 1}}}},
	}}
	assert.Len(t, Diff(base, changed), 2)

	missing := &Table{Groups: base.Groups[:1]}
	diffs := Diff(base, missing)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "missing type styleable")

	extra := &Table{Groups: []Group{
		{Type: res.Attr, Fields: []Field{{Name: "a", Value: 1}, {Name: "b", Value: 2}}},
		base.Groups[1],
	}}
	diffs = Diff(base, extra)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "unexpected b = 0x2")

	scalarVsArray := &Table{Groups: []Group{
		base.Groups[0],
		{Type: res.Styleable, Fields: []Field{{Name: "S", Value: 1}}},
	}}
	assert.Len(t, Diff(base, scalarVsArray), 1)
	assert.Equal(t, 2, base.Len())
}
