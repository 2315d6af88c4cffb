package taskparam

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParent() *etree.Element {
	return etree.NewDocument().CreateElement("Task")
}

func TestCreate_DispatchTable(t *testing.T) {
	tests := []struct {
		prefix   string
		message  string
		kind     Kind
		attrName string
	}{
		{OutputItemsPrefix, "Output Item(s): Files=\n    a", KindOutputItem, IncludeAttribute},
		{TaskParameterPrefix, "Task Parameter:A=B", KindInputParameter, IncludeAttribute},
		{OutputPropertyPrefix, "Output Property: A=B", KindOutputProperty, IncludeAttribute},
		{ItemGroupIncludePrefix, "Added Item(s): Compile=\n    a.cs", KindItemGroup, IncludeAttribute},
		{ItemGroupRemovePrefix, "Removed Item(s): Compile=\n    a.cs", KindItemGroup, RemoveAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			p, err := Create(tt.message, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
			assert.Equal(t, tt.attrName, p.ItemAttributeName())
			assert.True(t, p.CollapseSingleItem())
		})
	}
}

func TestCreate_LoggerPrefixWithTrailingSpace(t *testing.T) {
	tests := []struct {
		prefix   string
		kind     Kind
		attrName string
	}{
		{"Output Item(s): ", KindOutputItem, IncludeAttribute},
		{"Task Parameter: ", KindInputParameter, IncludeAttribute},
		{"Output Property: ", KindOutputProperty, IncludeAttribute},
		{"Added Item(s): ", KindItemGroup, IncludeAttribute},
		{"Removed Item(s): ", KindItemGroup, RemoveAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			p, err := Create(tt.prefix+"Files=a.txt", tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
			assert.Equal(t, tt.attrName, p.ItemAttributeName())
			assert.Equal(t, "Files", p.Name)
			require.Equal(t, 1, p.Len())
			assert.Equal(t, "a.txt", p.Items()[0].Text)
		})
	}
}

func TestCreate_SpacedPrefixRequiresSpaceInMessage(t *testing.T) {
	_, err := Create("Output Item(s):\n    Files=\n        a.txt", "Output Item(s): ")
	var malformed *MalformedMessageError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "Output Item(s): ", malformed.Prefix)

	p, err := Create("Output Item(s):\n    Files=\n        a.txt", OutputItemsPrefix)
	require.NoError(t, err)
	assert.Equal(t, "Files", p.Name)
}

func TestCreate_EveryPrefixIsRegistered(t *testing.T) {
	for _, prefix := range Prefixes() {
		d, ok := Lookup(prefix)
		require.True(t, ok, prefix)
		assert.NotEqual(t, KindUnknown, d.Kind, prefix)
		assert.NotEmpty(t, d.ItemAttributeName, prefix)
	}
	assert.Len(t, Prefixes(), len(descriptors))
}

func TestCreate_UnknownPrefix(t *testing.T) {
	for _, prefix := range []string{"", "Output Items:", " Task Parameter:", "Skipped Item(s): "} {
		p, err := Create(prefix+"A=B", prefix)
		require.Error(t, err)
		assert.Nil(t, p)

		var unknown *UnrecognizedPrefixError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, prefix, unknown.Prefix)
	}
}

func TestCreate_MalformedMessage(t *testing.T) {
	_, err := Create("Removed Item(s): Compile=", ItemGroupIncludePrefix)
	var malformed *MalformedMessageError
	require.True(t, errors.As(err, &malformed))
}

func TestPrefixes_ReturnsCopy(t *testing.T) {
	prefixes := Prefixes()
	prefixes[0] = "mutated"
	assert.Equal(t, OutputItemsPrefix, Prefixes()[0])
}

func TestSaveToElement_CollapsesSingleItem(t *testing.T) {
	p, err := Create("Output Property: Configuration=Debug", OutputPropertyPrefix)
	require.NoError(t, err)

	element := p.SaveToElement(newParent())
	assert.Equal(t, "Configuration", element.Tag)
	assert.Equal(t, "Debug", element.Text())
	assert.Empty(t, element.ChildElements())
}

func TestSaveToElement_SingleItemWithMetadataIsNotCollapsed(t *testing.T) {
	p, err := Create("Output Item(s):\n    Foo.dll\n        Culture=en-US", OutputItemsPrefix)
	require.NoError(t, err)

	parent := newParent()
	element := p.SaveToElement(parent)
	require.Len(t, parent.ChildElements(), 1)

	items := element.ChildElements()
	require.Len(t, items, 1)
	assert.Equal(t, ItemElementTag, items[0].Tag)
	assert.Equal(t, "Foo.dll", items[0].SelectAttrValue(IncludeAttribute, ""))

	meta := items[0].ChildElements()
	require.Len(t, meta, 1)
	assert.Equal(t, "Culture", meta[0].Tag)
	assert.Equal(t, "en-US", meta[0].Text())
}

func TestSaveToElement_UnnamedParameterFallsBackToKind(t *testing.T) {
	p, err := Create("Output Item(s):\n    Foo.dll", OutputItemsPrefix)
	require.NoError(t, err)

	element := p.SaveToElement(newParent())
	assert.Equal(t, KindOutputItem.String(), element.Tag)
	assert.Equal(t, "Foo.dll", element.Text())
}

func TestSaveToElement_PreservesOrder(t *testing.T) {
	msg := "Task Parameter:\n    Refs=\n" +
		"        z.dll\n                Zeta=1\n                Alpha=2\n" +
		"        a.dll\n                Mid=3\n" +
		"        m.dll\n"
	p, err := Create(msg, TaskParameterPrefix)
	require.NoError(t, err)

	element := p.SaveToElement(newParent())
	items := element.ChildElements()
	require.Len(t, items, 3)

	var texts []string
	for _, item := range items {
		texts = append(texts, item.SelectAttrValue(IncludeAttribute, ""))
	}
	assert.Equal(t, []string{"z.dll", "a.dll", "m.dll"}, texts)

	meta := items[0].ChildElements()
	require.Len(t, meta, 2)
	assert.Equal(t, "Zeta", meta[0].Tag)
	assert.Equal(t, "Alpha", meta[1].Tag)
	assert.Len(t, items[1].ChildElements(), 1)
	assert.Empty(t, items[2].ChildElements())
}

func TestSaveToElement_RemoveAttribute(t *testing.T) {
	p, err := Create("Removed Item(s): Compile=\n    a.cs\n    b.cs", ItemGroupRemovePrefix)
	require.NoError(t, err)

	element := p.SaveToElement(newParent())
	items := element.ChildElements()
	require.Len(t, items, 2)
	assert.Equal(t, "a.cs", items[0].SelectAttrValue(RemoveAttribute, ""))
	assert.Nil(t, items[0].SelectAttr(IncludeAttribute))
}

func TestSaveToElement_EmptyGroup(t *testing.T) {
	p, err := Create("Added Item(s): Compile=", ItemGroupIncludePrefix)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	element := p.SaveToElement(newParent())
	assert.Equal(t, "Compile", element.Tag)
	assert.Empty(t, element.ChildElements())
	assert.Equal(t, "", element.Text())
}

func TestSaveToElement_CollapseDisabled(t *testing.T) {
	p := New(Descriptor{Kind: KindItemGroup, ItemAttributeName: IncludeAttribute})
	p.Name = "Compile"
	p.AddItem(NewItem("a.cs"))

	element := p.SaveToElement(newParent())
	items := element.ChildElements()
	require.Len(t, items, 1)
	assert.Equal(t, "a.cs", items[0].SelectAttrValue(IncludeAttribute, ""))
}

func TestNew_DefaultsItemAttributeName(t *testing.T) {
	p := New(Descriptor{Kind: KindOutputItem})
	assert.Equal(t, IncludeAttribute, p.ItemAttributeName())
	assert.False(t, p.CollapseSingleItem())
	assert.True(t, New(DefaultDescriptor(KindOutputItem)).CollapseSingleItem())
}

func TestParameter_ItemsIsACopy(t *testing.T) {
	p := New(DefaultDescriptor(KindOutputItem))
	p.AddItem(NewItem("a"))
	items := p.Items()
	items[0] = NewItem("b")
	assert.Equal(t, "a", p.Items()[0].Text)
}

func TestParameter_Clone(t *testing.T) {
	p, err := Create("Output Item(s): Files=\n    a.txt\n        Kind=doc", OutputItemsPrefix)
	require.NoError(t, err)

	c := p.Clone()
	assert.Equal(t, p.Name, c.Name)
	assert.Equal(t, p.Descriptor(), c.Descriptor())
	require.Equal(t, 1, c.Len())
	assert.NotSame(t, p.Items()[0], c.Items()[0])

	c.Items()[0].SetMetadata("Kind", "changed")
	v, _ := p.Items()[0].MetadataValue("Kind")
	assert.Equal(t, "doc", v)
}

func TestKind_StringRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindInputParameter, KindOutputItem, KindOutputProperty, KindItemGroup} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("nope"))
}

// Parse followed by SaveToElement reproduces N items with M metadata each, in order.
func TestRoundTrip_ItemsAndMetadata(t *testing.T) {
	msg := "Output Item(s): Files=\n" +
		"    one\n        A=1\n        B=2\n" +
		"    two\n        A=3\n        B=4\n" +
		"    three\n        A=5\n        B=6\n"
	p, err := Create(msg, OutputItemsPrefix)
	require.NoError(t, err)

	items := p.SaveToElement(newParent()).ChildElements()
	require.Len(t, items, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, items[i].SelectAttrValue(IncludeAttribute, ""))
		meta := items[i].ChildElements()
		require.Len(t, meta, 2)
		assert.Equal(t, "A", meta[0].Tag)
		assert.Equal(t, "B", meta[1].Tag)
	}
}
