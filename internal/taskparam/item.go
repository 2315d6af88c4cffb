package taskparam

import (
	"github.com/beevik/etree"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ItemElementTag is the tag used for each nested item element.
const ItemElementTag = "Item"

// Metadatum is a single key/value pair attached to an Item.
type Metadatum struct {
	Key   string
	Value string
}

// Item is one value of a task parameter (usually a file path) plus its metadata.
// Metadata keeps insertion order and keys are unique.
type Item struct {
	Text     string
	metadata *orderedmap.OrderedMap[string, string]
}

// NewItem creates an item with the given text and no metadata.
func NewItem(text string) *Item {
	return &Item{
		Text:     text,
		metadata: orderedmap.New[string, string](),
	}
}

// SetMetadata adds or replaces a metadata entry. A replaced key keeps its
// original position. Only call this while the item is being built.
func (i *Item) SetMetadata(key, value string) {
	if i.metadata == nil {
		i.metadata = orderedmap.New[string, string]()
	}
	i.metadata.Set(key, value)
}

// MetadataValue returns the value for key.
func (i *Item) MetadataValue(key string) (string, bool) {
	if i.metadata == nil {
		return "", false
	}
	return i.metadata.Get(key)
}

// HasMetadata reports whether the item carries any metadata.
func (i *Item) HasMetadata() bool {
	return i.metadata != nil && i.metadata.Len() > 0
}

// Metadata returns the metadata entries in insertion order.
func (i *Item) Metadata() []Metadatum {
	if i.metadata == nil {
		return nil
	}
	entries := make([]Metadatum, 0, i.metadata.Len())
	for pair := i.metadata.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Metadatum{Key: pair.Key, Value: pair.Value})
	}
	return entries
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := NewItem(i.Text)
	for _, m := range i.Metadata() {
		c.metadata.Set(m.Key, m.Value)
	}
	return c
}

// SaveToElement appends the item as a nested element of parent. The item text
// goes into the attribute named attrName and every metadata entry becomes a
// child element.
func (i *Item) SaveToElement(parent *etree.Element, attrName string) *etree.Element {
	element := parent.CreateElement(ItemElementTag)
	element.CreateAttr(attrName, i.Text)
	for _, m := range i.Metadata() {
		element.CreateElement(m.Key).SetText(m.Value)
	}
	return element
}
