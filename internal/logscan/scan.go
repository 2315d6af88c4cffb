// Package logscan finds task parameter messages in a build log.
//
// A message starts at a line whose text (after indentation) begins with one of
// the known prefixes and continues over the following lines that are blank or
// indented deeper than that first line.
package logscan

import (
	"bufio"
	"io"
	"strings"

	"github.com/newhook/tasklog/internal/taskparam"
)

// maxLineSize bounds a single log line.
const maxLineSize = 4 * 1024 * 1024

// Message is one task parameter message cut out of a log.
type Message struct {
	Prefix string
	Text   string
	// Line is the 1-based line where the message starts.
	Line int
}

// Scanner splits log lines into messages incrementally.
type Scanner struct {
	prefixes []string
	line     int

	pending *pending
}

type pending struct {
	msg    Message
	indent int
	lines  []string
}

// NewScanner returns a Scanner recognizing the given prefixes, or every
// prefix known to taskparam when none are given.
func NewScanner(prefixes ...string) *Scanner {
	if len(prefixes) == 0 {
		prefixes = taskparam.Prefixes()
	}
	return &Scanner{prefixes: prefixes}
}

// Feed consumes the next raw log line and returns the message it completed, if any.
func (s *Scanner) Feed(raw string) (Message, bool) {
	s.line++
	line := CleanLine(raw)
	body := strings.TrimLeft(line, " \t")

	if s.pending != nil {
		if body == "" || leadingWidth(line) > s.pending.indent {
			s.pending.lines = append(s.pending.lines, line)
			return Message{}, false
		}
	}

	done, ok := s.Flush()

	if prefix, found := s.matchPrefix(body); found {
		s.pending = &pending{
			msg:    Message{Prefix: prefix, Line: s.line},
			indent: leadingWidth(line),
			lines:  []string{body},
		}
	}
	return done, ok
}

// Flush returns the message being accumulated, if any, and resets the scanner's pending state.
func (s *Scanner) Flush() (Message, bool) {
	if s.pending == nil {
		return Message{}, false
	}
	p := s.pending
	s.pending = nil

	end := len(p.lines)
	for end > 1 && strings.TrimSpace(p.lines[end-1]) == "" {
		end--
	}
	p.msg.Text = strings.Join(p.lines[:end], "\n")
	return p.msg, true
}

func (s *Scanner) matchPrefix(body string) (string, bool) {
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(body, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// Scan reads a whole log and returns its messages in order.
func Scan(r io.Reader) ([]Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	s := NewScanner()
	var messages []Message
	for sc.Scan() {
		if msg, ok := s.Feed(sc.Text()); ok {
			messages = append(messages, msg)
		}
	}
	if err := sc.Err(); err != nil {
		return messages, err
	}
	if msg, ok := s.Flush(); ok {
		messages = append(messages, msg)
	}
	return messages, nil
}

// ScanString is Scan over an in-memory log.
func ScanString(log string) []Message {
	messages, _ := Scan(strings.NewReader(log))
	return messages
}

func leadingWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
