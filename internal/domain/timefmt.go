package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	displayLayout = "02/01/2006 03:04PM"
	dateLayout    = "02/01/2006"
	isoLayout     = "2006-01-02T15:04:05.000Z07:00"
)

// NotAvailable is reported when a derived value cannot be computed.
const NotAvailable = "N/A"

// FormatTimestamp renders t as DD/MM/YYYY hh:mmAM/PM in t's location.
func FormatTimestamp(t time.Time) string {
	return t.Format(displayLayout)
}

// ISOTimestamp renders t in UTC with millisecond precision.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseRaisedOn reads the DD/MM/YYYY prefix of a display timestamp in loc.
func ParseRaisedOn(raisedOn string, loc *time.Location) (time.Time, error) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(raisedOn), " ")
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, datePart, loc)
}

// TicketAge returns the whole days between raisedOn and now, rounded up, as "<n> days".
func TicketAge(raisedOn string, now time.Time) string {
	raised, err := ParseRaisedOn(raisedOn, now.Location())
	if err != nil {
		return NotAvailable
	}
	diff := now.Sub(raised)
	if diff < 0 {
		diff = -diff
	}
	days := int64(math.Ceil(diff.Hours() / 24))
	return fmt.Sprintf("%d days", days)
}
