package concert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/lctime"
)

// DateLayout is the stored date format.
const DateLayout = "2006-01-02"

// DisplayLocale drives month names in display labels.
const DisplayLocale = "it_IT"

// ParseDate parses an ISO calendar day. RFC 3339 timestamps are accepted and
// truncated to their date. Anything else yields the zero time and false;
// the zero time sorts before every known date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// DateLabel is the day / short month / year triple shown in tables.
type DateLabel struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// UnknownDateLabel is shown for dates that do not parse.
var UnknownDateLabel = DateLabel{Day: "?", Month: "???", Year: "????"}

// LabelDate renders s as a DateLabel with an upper-cased Italian short month.
func LabelDate(s string) DateLabel {
	t, ok := ParseDate(s)
	if !ok {
		return UnknownDateLabel
	}
	month, err := lctime.StrftimeLoc(DisplayLocale, "%b", t)
	if err != nil {
		month = t.Format("Jan")
	}
	return DateLabel{
		Day:   strconv.Itoa(t.Day()),
		Month: strings.ToUpper(month),
		Year:  strconv.Itoa(t.Year()),
	}
}

// LongDate renders s as "14 giugno 2017". Unparseable input is returned as is.
func LongDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	month, err := lctime.StrftimeLoc(DisplayLocale, "%B", t)
	if err != nil {
		month = t.Format("January")
	}
	return fmt.Sprintf("%d %s %d", t.Day(), month, t.Year())
}

var italianMonths = map[string]string{
	"gen": "01", "feb": "02", "mar": "03", "apr": "04", "mag": "05", "giu": "06",
	"lug": "07", "ago": "08", "set": "09", "ott": "10", "nov": "11", "dic": "12",
}

// ParseItalianDate converts "14-giu-2017" to "2017-06-14". Input in any other
// shape is returned unchanged.
func ParseItalianDate(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	month, ok := italianMonths[strings.ToLower(parts[1])]
	if !ok {
		return s
	}
	day := parts[0]
	if len(day) < 2 {
		day = strings.Repeat("0", 2-len(day)) + day
	}
	return parts[2] + "-" + month + "-" + day
}
