package service

import (
	"fmt"
	"strconv"
	"strings"
)

// studentIDPrefix opens every generated identifier, old scheme and new.
const studentIDPrefix = "SID"

// TeacherLetterCode maps a positive teacher id to a bijective base-26 letter
// code: 1 -> "A", 26 -> "Z", 27 -> "AA", 28 -> "AB". Each teacher gets a
// distinct, compact namespace tag without any lookup table.
func TeacherLetterCode(n int64) string {
	if n <= 0 {
		return ""
	}
	var letters []byte
	for n > 0 {
		n--
		letters = append(letters, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

// FormatStudentID renders an identifier as "SID" + letter code + sequence
// zero-padded to three digits. Sequences beyond 999 widen naturally.
func FormatStudentID(letterCode string, seq int) string {
	return fmt.Sprintf("%s%s%03d", studentIDPrefix, letterCode, seq)
}

// NextSequence derives the next sequence number from the identifiers already
// on a teacher's roster. Identifiers in the current lettered form and in the
// legacy letter-less form ("SID" + digits) share one sequence space, so the
// result is max(observed) + 1 across both, or 1 when neither form appears.
// Deriving from the observed maximum keeps sequences monotonically
// non-decreasing after deletions: freed numbers are never reused.
func NextSequence(letterCode string, existing []string) int {
	lettered := studentIDPrefix + letterCode
	highest := 0
	for _, sid := range existing {
		if strings.HasPrefix(sid, lettered) {
			if n, ok := parseSequence(sid[len(lettered):]); ok {
				if n > highest {
					highest = n
				}
				continue
			}
		}
		if strings.HasPrefix(sid, studentIDPrefix) {
			if n, ok := parseSequence(sid[len(studentIDPrefix):]); ok && n > highest {
				highest = n
			}
		}
	}
	return highest + 1
}

func parseSequence(tail string) (int, bool) {
	if tail == "" {
		return 0, false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, false
	}
	return n, true
}
