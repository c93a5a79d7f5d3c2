package view

import (
    "fmt"
    "time"
)

// Layouts used by the datetime template function.
const (
    FullLayout   = "Monday January, 2, 2006 at 3:04PM"
    MediumLayout = "Mon 01, 02, 2006 3:04PM"
)

var inputLayouts = []string{
    time.RFC3339,
    "2006-01-02 15:04:05",
    "2006-01-02T15:04:05",
    "2006-01-02 15:04",
    "2006-01-02T15:04",
}

// FormatDatetime formats v, a time.Time or a parseable timestamp string,
// using the "full" or "medium" format.  Any other format name is treated
// as medium.  Unparseable strings are returned unchanged.
func FormatDatetime(v any, format ...string) string {
    var t time.Time
    switch x := v.(type) {
    case time.Time:
        t = x
    case *time.Time:
        if x == nil {
            return ""
        }
        t = *x
    case string:
        parsed, ok := parseTimestamp(x)
        if !ok {
            return x
        }
        t = parsed
    default:
        return fmt.Sprint(v)
    }
    layout := MediumLayout
    if len(format) > 0 && format[0] == "full" {
        layout = FullLayout
    }
    return t.Format(layout)
}

func parseTimestamp(s string) (time.Time, bool) {
    for _, l := range inputLayouts {
        if t, err := time.Parse(l, s); err == nil {
            return t, true
        }
    }
    return time.Time{}, false
}
