package taskparam

import "strings"

// Message prefixes written by the build engine's logger. They are matched
// literally against the start of a message; the logger's spelling with a
// trailing space is accepted by Lookup as well.
const (
	OutputItemsPrefix      = "Output Item(s):"
	TaskParameterPrefix    = "Task Parameter:"
	OutputPropertyPrefix   = "Output Property:"
	ItemGroupIncludePrefix = "Added Item(s):"
	ItemGroupRemovePrefix  = "Removed Item(s):"
)

// Item attribute names used when serializing items.
const (
	IncludeAttribute = "Include"
	RemoveAttribute  = "Remove"
)

// Kind identifies which kind of task parameter a message describes.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputParameter
	KindOutputItem
	KindOutputProperty
	KindItemGroup
)

func (k Kind) String() string {
	switch k {
	case KindInputParameter:
		return "InputParameter"
	case KindOutputItem:
		return "OutputItem"
	case KindOutputProperty:
		return "OutputProperty"
	case KindItemGroup:
		return "ItemGroup"
	default:
		return "Unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) Kind {
	switch s {
	case "InputParameter":
		return KindInputParameter
	case "OutputItem":
		return KindOutputItem
	case "OutputProperty":
		return KindOutputProperty
	case "ItemGroup":
		return KindItemGroup
	default:
		return KindUnknown
	}
}

// Descriptor is the configuration that distinguishes one parameter kind from
// another. Kinds differ only in data, not behavior.
type Descriptor struct {
	Kind               Kind
	ItemAttributeName  string
	CollapseSingleItem bool
}

// DefaultDescriptor returns the descriptor used for parameters built by hand.
func DefaultDescriptor(kind Kind) Descriptor {
	return Descriptor{
		Kind:               kind,
		ItemAttributeName:  IncludeAttribute,
		CollapseSingleItem: true,
	}
}

// prefixOrder lists the known prefixes in a stable order.
var prefixOrder = []string{
	OutputItemsPrefix,
	TaskParameterPrefix,
	OutputPropertyPrefix,
	ItemGroupIncludePrefix,
	ItemGroupRemovePrefix,
}

// descriptors maps every known prefix to its descriptor. Never written after init.
var descriptors = map[string]Descriptor{
	OutputItemsPrefix:      DefaultDescriptor(KindOutputItem),
	TaskParameterPrefix:    DefaultDescriptor(KindInputParameter),
	OutputPropertyPrefix:   DefaultDescriptor(KindOutputProperty),
	ItemGroupIncludePrefix: {Kind: KindItemGroup, ItemAttributeName: IncludeAttribute, CollapseSingleItem: true},
	ItemGroupRemovePrefix:  {Kind: KindItemGroup, ItemAttributeName: RemoveAttribute, CollapseSingleItem: true},
}

// Lookup returns the descriptor registered for prefix. The logger writes each
// prefix followed by a space, so trailing spaces are ignored.
func Lookup(prefix string) (Descriptor, bool) {
	d, ok := descriptors[strings.TrimRight(prefix, " ")]
	return d, ok
}

// Prefixes returns the known message prefixes.
func Prefixes() []string {
	out := make([]string, len(prefixOrder))
	copy(out, prefixOrder)
	return out
}
