package taskparam

import "strings"

// tabWidth is the indentation width counted for a tab character.
const tabWidth = 4

// ParseItemList parses a task parameter message into its items and the
// parameter name. The message must start with prefix.
//
// Two layouts are understood. The single-line form carries the name and one
// value on the prefix line:
//
//	Output Property: Configuration=Debug
//
// The multi-line form carries the name on its own line (or no name at all)
// followed by item lines. Lines indented deeper than the item lines are
// key=value metadata for the item above them:
//
//	Task Parameter:
//	    Sources=
//	        Program.cs
//	                Link=Program.cs
func ParseItemList(message, prefix string) ([]*Item, string, error) {
	if !strings.HasPrefix(message, prefix) {
		return nil, "", &MalformedMessageError{Prefix: prefix, Message: message}
	}

	lines := splitLines(message[len(prefix):])
	header := strings.TrimSpace(lines[0])
	rest := lines[1:]

	if header != "" {
		name, value, found := strings.Cut(header, "=")
		if !found {
			return parseItems(rest), header, nil
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if value == "" {
			return parseItems(rest), name, nil
		}
		// A value on the prefix line followed by more lines is a multi-line property value.
		return []*Item{NewItem(joinContinuation(value, rest))}, name, nil
	}

	for i, line := range rest {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "=") {
			name := strings.TrimSpace(strings.TrimSuffix(trimmed, "="))
			return parseItems(rest[i+1:]), name, nil
		}
		break
	}
	return parseItems(rest), "", nil
}

// parseItems turns indented item lines into items. The shallowest indentation
// marks item lines; anything deeper is metadata of the preceding item.
func parseItems(lines []string) []*Item {
	base := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if w := indentWidth(line); base < 0 || w < base {
			base = w
		}
	}

	var items []*Item
	var current *Item
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if indentWidth(line) <= base {
			current = NewItem(trimmed)
			items = append(items, current)
			continue
		}
		if current == nil {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		current.SetMetadata(key, strings.TrimSpace(value))
	}
	return items
}

// joinContinuation appends the remaining lines to value, dropping trailing blank lines.
func joinContinuation(value string, rest []string) string {
	end := len(rest)
	for end > 0 && strings.TrimSpace(rest[end-1]) == "" {
		end--
	}
	if end == 0 {
		return value
	}
	return value + "\n" + strings.Join(rest[:end], "\n")
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return width
		}
	}
	return width
}
