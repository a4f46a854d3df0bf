package logline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// otlpLog is the subset of an OTLP JSON log record Parse understands.
type otlpLog struct {
	Timestamp      int64                  `json:"timeUnixNano"`
	SeverityNumber int                    `json:"severityNumber"`
	SeverityText   string                 `json:"severityText"`
	Body           interface{}            `json:"body"`
	Attributes     map[string]interface{} `json:"attributes"`
	Resource       map[string]interface{} `json:"resource"`
}

// Parser turns raw log text into Entry values. It is stateless aside
// from the timezone used to render sniffed timestamps.
type Parser struct {
	timezone *time.Location
}

// NewParser builds a Parser for the given IANA timezone name, falling
// back to UTC if it cannot be loaded.
func NewParser(timezone string) *Parser {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Parser{timezone: loc}
}

// Parse tries OTLP JSON, then a couple of common structured formats,
// falling back to plain-text level and timestamp sniffing. This backs
// the preview pane only; the index itself never looks at line content.
func (p *Parser) Parse(line string) Entry {
	if entry, ok := p.tryParseOTLP(line); ok {
		return entry
	}
	if entry, ok := p.tryParseStructured(line); ok {
		return entry
	}
	return p.parsePlainText(line)
}

func (p *Parser) tryParseOTLP(line string) (Entry, bool) {
	var rec otlpLog
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return Entry{}, false
	}

	entry := Entry{Raw: line, Metadata: make(map[string]interface{})}

	if rec.Timestamp > 0 {
		entry.Timestamp = time.Unix(0, rec.Timestamp).In(p.timezone).Format("2006-01-02 15:04:05")
	} else {
		entry.Timestamp = time.Now().In(p.timezone).Format("2006-01-02 15:04:05")
	}

	entry.Level = otlpSeverityToLevel(rec.SeverityNumber, rec.SeverityText)

	switch body := rec.Body.(type) {
	case string:
		entry.Message = body
	case map[string]interface{}:
		if msg, ok := body["stringValue"].(string); ok {
			entry.Message = msg
		} else if encoded, err := json.Marshal(body); err == nil {
			entry.Message = string(encoded)
		}
	}

	if rec.Attributes != nil {
		entry.Metadata["attributes"] = rec.Attributes
	}
	if rec.Resource != nil {
		entry.Metadata["resource"] = rec.Resource
	}

	return entry, true
}

// otlpSeverityToLevel maps an OTLP severity number (1-24, in four
// bands of six) or, failing that, its text form onto Level.
func otlpSeverityToLevel(number int, text string) Level {
	switch {
	case number >= 17:
		return Error
	case number >= 13:
		return Warn
	case number >= 5:
		return Info
	case number >= 1:
		return Debug
	}
	switch strings.ToUpper(text) {
	case "ERROR", "FATAL", "CRITICAL":
		return Error
	case "WARN", "WARNING":
		return Warn
	case "DEBUG", "TRACE":
		return Debug
	default:
		return Info
	}
}

var railsRegex = regexp.MustCompile(`^\s*\(([0-9.]+)ms\)\s+(.+)$`)
var commonLogRegex = regexp.MustCompile(`^(\S+) - - \[([^\]]+)\] "([^"]*)" (\d+) (\d+)`)

// tryParseStructured recognizes a Rails SQL-timing line or an
// Apache/Nginx common-log-format access line.
func (p *Parser) tryParseStructured(line string) (Entry, bool) {
	clean := StripANSI(line)

	if matches := railsRegex.FindStringSubmatch(clean); len(matches) == 3 {
		entry := Entry{
			Timestamp: time.Now().In(p.timezone).Format("2006-01-02 15:04:05"),
			Level:     Info,
			Message:   matches[2],
			Raw:       line,
			Metadata:  map[string]interface{}{"duration_ms": matches[1]},
		}
		upper := strings.ToUpper(entry.Message)
		switch {
		case strings.Contains(upper, "ERROR"):
			entry.Level = Error
		case strings.Contains(upper, "WARN"):
			entry.Level = Warn
		case strings.Contains(upper, "SELECT"), strings.Contains(upper, "INSERT"),
			strings.Contains(upper, "UPDATE"), strings.Contains(upper, "DELETE"):
			entry.Level = Debug
		}
		return entry, true
	}

	if matches := commonLogRegex.FindStringSubmatch(clean); len(matches) == 6 {
		entry := Entry{
			Timestamp: matches[2],
			Level:     Info,
			Message:   fmt.Sprintf("%s %s - status %s", matches[1], matches[3], matches[4]),
			Raw:       line,
			Metadata: map[string]interface{}{
				"ip":            matches[1],
				"request":       matches[3],
				"status_code":   matches[4],
				"response_size": matches[5],
			},
		}
		if status, err := strconv.Atoi(matches[4]); err == nil {
			switch {
			case status >= 500:
				entry.Level = Error
			case status >= 400:
				entry.Level = Warn
			}
		}
		return entry, true
	}

	return Entry{}, false
}

// parsePlainText strips ANSI escapes from line and sniffs a severity
// level and a leading timestamp from what's left.
func (p *Parser) parsePlainText(line string) Entry {
	clean := StripANSI(line)
	entry := Entry{
		Timestamp: time.Now().In(p.timezone).Format("2006-01-02 15:04:05"),
		Level:     Info,
		Message:   clean,
		Raw:       line,
	}

	upper := strings.ToUpper(clean)
	switch {
	case strings.Contains(upper, "ERROR"), strings.Contains(upper, "FATAL"):
		entry.Level = Error
	case strings.Contains(upper, "WARN"):
		entry.Level = Warn
	case strings.Contains(upper, "DEBUG"), strings.Contains(upper, "TRACE"):
		entry.Level = Debug
	}

	p.extractTimestamp(&entry, clean)
	return entry
}

var timestampPatterns = []string{
	`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`,
	`(\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2})`,
	`(\w{3} \d{1,2} \d{2}:\d{2}:\d{2})`,
	`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))`,
}

var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"02/Jan/2006:15:04:05",
	"Jan 2 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func (p *Parser) extractTimestamp(entry *Entry, line string) {
	for _, pattern := range timestampPatterns {
		matches := regexp.MustCompile(pattern).FindStringSubmatch(line)
		if len(matches) <= 1 {
			continue
		}
		for _, format := range timestampFormats {
			if t, err := time.Parse(format, matches[1]); err == nil {
				entry.Timestamp = t.In(p.timezone).Format("2006-01-02 15:04:05")
				return
			}
		}
	}
}
