package precheck

import (
	"strings"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

// RejectionLine is one categorized conflict from a save rejection.
type RejectionLine struct {
	Category models.ConflictType `json:"category"`
	Text     string              `json:"text"`
}

// ConflictUnknown tags rejection lines whose category could not be derived.
// They are surfaced rather than dropped.
const ConflictUnknown models.ConflictType = "UNKNOWN"

const legacyRejectionHeader = "Timetable conflicts detected: "

// ParseSaveRejection categorizes the conflict lines of an authoritative save
// rejection. Two formats exist: newline-separated lines prefixed with
// "CLASSROOM CONFLICT:", "PROFESSOR CONFLICT:", "STUDENT CONFLICT:" or
// "TIMETABLE CONFLICT:" (overlap within the submitted timetable itself), and
// a legacy format opening with "Timetable conflicts detected: " followed by
// "- "-prefixed lines. Every non-empty line survives parsing.
func ParseSaveRejection(message string) []RejectionLine {
	if strings.HasPrefix(message, legacyRejectionHeader) {
		return parseLegacyRejection(strings.TrimPrefix(message, legacyRejectionHeader))
	}

	var lines []RejectionLine
	for _, raw := range strings.Split(message, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lines = append(lines, categorize(line))
	}
	return lines
}

func parseLegacyRejection(body string) []RejectionLine {
	var lines []RejectionLine
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if line == "" {
			continue
		}
		lines = append(lines, categorize(line))
	}
	return lines
}

func categorize(line string) RejectionLine {
	switch {
	case strings.HasPrefix(line, "CLASSROOM CONFLICT:"):
		return RejectionLine{Category: models.ConflictClassroom, Text: strings.TrimSpace(strings.TrimPrefix(line, "CLASSROOM CONFLICT:"))}
	case strings.HasPrefix(line, "PROFESSOR CONFLICT:"):
		return RejectionLine{Category: models.ConflictProfessor, Text: strings.TrimSpace(strings.TrimPrefix(line, "PROFESSOR CONFLICT:"))}
	case strings.HasPrefix(line, "STUDENT CONFLICT:"):
		return RejectionLine{Category: models.ConflictStudent, Text: strings.TrimSpace(strings.TrimPrefix(line, "STUDENT CONFLICT:"))}
	case strings.HasPrefix(line, "TIMETABLE CONFLICT:"):
		return RejectionLine{Category: models.ConflictLocal, Text: strings.TrimSpace(strings.TrimPrefix(line, "TIMETABLE CONFLICT:"))}
	default:
		return RejectionLine{Category: ConflictUnknown, Text: line}
	}
}
