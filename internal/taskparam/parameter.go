// Package taskparam models the task parameter messages a build engine logs
// (task inputs, task outputs and item group changes) and renders them as XML.
package taskparam

import "github.com/beevik/etree"

// Parameter is a named, ordered list of items parsed from one log message.
type Parameter struct {
	Name string

	descriptor Descriptor
	items      []*Item
}

// New creates an empty parameter. Items are added with AddItem.
func New(d Descriptor) *Parameter {
	if d.ItemAttributeName == "" {
		d.ItemAttributeName = IncludeAttribute
	}
	return &Parameter{descriptor: d}
}

// NewFromMessage parses message with the given descriptor.
func NewFromMessage(message, prefix string, d Descriptor) (*Parameter, error) {
	items, name, err := ParseItemList(message, prefix)
	if err != nil {
		return nil, err
	}
	p := New(d)
	p.Name = name
	p.items = items
	return p, nil
}

// Create builds the parameter kind registered for prefix from message.
func Create(message, prefix string) (*Parameter, error) {
	d, ok := Lookup(prefix)
	if !ok {
		return nil, &UnrecognizedPrefixError{Prefix: prefix}
	}
	return NewFromMessage(message, prefix, d)
}

// AddItem appends an item.
func (p *Parameter) AddItem(item *Item) {
	p.items = append(p.items, item)
}

// Items returns the items in the order they were added.
func (p *Parameter) Items() []*Item {
	out := make([]*Item, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of items.
func (p *Parameter) Len() int { return len(p.items) }

// Kind returns the parameter kind fixed at construction.
func (p *Parameter) Kind() Kind { return p.descriptor.Kind }

// Descriptor returns the descriptor the parameter was built with.
func (p *Parameter) Descriptor() Descriptor { return p.descriptor }

// ItemAttributeName is the attribute that carries each item's text ("Include" or "Remove").
func (p *Parameter) ItemAttributeName() string { return p.descriptor.ItemAttributeName }

// CollapseSingleItem reports whether a lone item without metadata is written as plain text.
func (p *Parameter) CollapseSingleItem() bool { return p.descriptor.CollapseSingleItem }

// Clone returns a deep copy that shares nothing with p.
func (p *Parameter) Clone() *Parameter {
	c := New(p.descriptor)
	c.Name = p.Name
	if len(p.items) > 0 {
		c.items = make([]*Item, 0, len(p.items))
		for _, item := range p.items {
			c.items = append(c.items, item.Clone())
		}
	}
	return c
}

// collapsed reports whether the parameter renders as a single text value.
func (p *Parameter) collapsed() bool {
	return p.descriptor.CollapseSingleItem && len(p.items) == 1 && !p.items[0].HasMetadata()
}

// elementName is the tag for the parameter element. Messages without a name
// line fall back to the kind so the markup stays well-formed.
func (p *Parameter) elementName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.descriptor.Kind.String()
}

// SaveToElement appends an element named after the parameter to parent and
// returns it. A lone item without metadata becomes the element's text;
// otherwise every item is written as a nested element, in order.
func (p *Parameter) SaveToElement(parent *etree.Element) *etree.Element {
	element := parent.CreateElement(p.elementName())
	if p.collapsed() {
		element.SetText(p.items[0].Text)
		return element
	}
	for _, item := range p.items {
		item.SaveToElement(element, p.descriptor.ItemAttributeName)
	}
	return element
}
