package timeutil

import (
	"time"
)

// GST is the Gulf Standard Time location (UTC+4)
var GST *time.Location

func init() {
	var err error
	GST, err = time.LoadLocation("Asia/Dubai")
	if err != nil {
		// Fallback: create fixed zone if Asia/Dubai not available
		GST = time.FixedZone("GST", 4*60*60) // UTC+4
	}
}

// Now returns the current time in GST
func Now() time.Time {
	return time.Now().In(GST)
}

// ToGST converts any time to GST
func ToGST(t time.Time) time.Time {
	return t.In(GST)
}

// ParseInGST parses a time string in GST
func ParseInGST(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, GST)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatGST formats a time in GST using the given layout
func FormatGST(t time.Time, layout string) string {
	return ToGST(t).Format(layout)
}

// StartOfDay returns the start of day (00:00:00) in GST for the given time
func StartOfDay(t time.Time) time.Time {
	gst := t.In(GST)
	return time.Date(gst.Year(), gst.Month(), gst.Day(), 0, 0, 0, 0, GST)
}

// SameDate reports whether two times fall on the same calendar date in GST
func SameDate(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// Common layouts for GST formatting
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
