package domain

import (
	"strconv"
	"strings"
)

// InitialTicketID is issued when no numeric ticket id exists yet.
const InitialTicketID int64 = 7654567897

// MaxNumericTicketID returns the largest id in ids that parses as an integer.
// Non-numeric ids are ignored.
func MaxNumericTicketID(ids []string) (int64, bool) {
	var (
		max   int64
		found bool
	)
	for _, id := range ids {
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found
}

// TicketIDBase is the value the next ticket id is incremented from.
func TicketIDBase(ids []string) int64 {
	if max, ok := MaxNumericTicketID(ids); ok {
		return max
	}
	return InitialTicketID - 1
}

// NextTicketID derives the next ticket id from the existing ids.
func NextTicketID(ids []string) string {
	return strconv.FormatInt(TicketIDBase(ids)+1, 10)
}
