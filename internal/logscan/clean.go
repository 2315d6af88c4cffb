package logscan

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var (
	// timestampPattern matches CI log timestamp prefixes.
	// Format: 2026-01-26T14:49:40.7760945Z
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z ?`)

	// jobPrefixPattern matches GitHub Actions job/step prefixes.
	// Format: "JobName\tStepName\t2026-01-26..."
	jobPrefixPattern = regexp.MustCompile(`^[^\t]+\t[^\t]+\t\d{4}-\d{2}-\d{2}T[^\s]+ ?`)
)

// CleanLine removes CI decorations from a single log line: the job/step
// prefix, the timestamp, ANSI escape sequences and a trailing carriage return.
// Indentation after the timestamp is preserved since it carries structure.
func CleanLine(line string) string {
	line = strings.TrimSuffix(line, "\r")
	line = jobPrefixPattern.ReplaceAllString(line, "")
	line = timestampPattern.ReplaceAllString(line, "")
	return ansi.Strip(line)
}
