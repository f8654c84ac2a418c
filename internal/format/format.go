package format

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// nbsp separates the currency symbol from the amount, matching pt-BR output of browsers.
const nbsp = "\u00a0"

var (
	printer = message.NewPrinter(language.BrazilianPortuguese)
	// DisplayLocation is the zone dates are rendered in.
	DisplayLocation = loadLocation("America/Sao_Paulo")
)

// Currency formats a price in reais using pt-BR digit grouping.
// Example: Currency(1234.5) => "R$\u00a01.234,50"
func Currency(v float64) string {
	if v < 0 {
		return "-R$" + nbsp + printer.Sprintf("%.2f", -v)
	}
	return "R$" + nbsp + printer.Sprintf("%.2f", v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes seen in feeds.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("format: empty timestamp")
	}
	for _, layout := range dateLayouts {
		// date-only values are midnight UTC; zone-less date-times are wall
		// clock in the display zone
		loc := time.UTC
		if strings.Contains(layout, "15") && layout != time.RFC3339 && layout != time.RFC3339Nano {
			loc = DisplayLocation
		}
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("format: unrecognized timestamp %q", raw)
}

// Date renders a timestamp string as "dd/mm/yyyy, hh:mm:ss" in DisplayLocation.
func Date(raw string) (string, error) {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return "", err
	}
	return t.In(DisplayLocation).Format("02/01/2006, 15:04:05"), nil
}

// DateOr is Date with a fallback for unparseable input.
func DateOr(raw, fallback string) string {
	s, err := Date(raw)
	if err != nil {
		return fallback
	}
	return s
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the five HTML-significant characters with entities.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// SetLocation overrides the display zone by IANA name. Unknown names are rejected.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("format: load location %q: %w", name, err)
	}
	DisplayLocation = loc
	return nil
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
