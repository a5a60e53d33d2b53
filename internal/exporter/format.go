package exporter

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// TimestampFormatter turns a raw captured_at value into display text
type TimestampFormatter func(raw string) string

// PassthroughFormatter returns the raw value untouched
func PassthroughFormatter(raw string) string {
	return raw
}

// DefaultLocale is used when no locale is configured
const DefaultLocale = "en-US"

// parseLayouts are tried in order. Values without an offset are read in the
// formatter's location.
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// localeLayouts holds the date/time rendering of each supported locale.
// The first entry is the fallback for locales without a close match.
var localeLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.MustParse("en-US"), "1/2/2006, 3:04:05 PM"},
	{language.MustParse("en-GB"), "02/01/2006, 15:04:05"},
	{language.MustParse("de-DE"), "2.1.2006, 15:04:05"},
	{language.MustParse("fr-FR"), "02/01/2006 15:04:05"},
	{language.MustParse("ja-JP"), "2006/1/2 15:04:05"},
	{language.MustParse("zh-CN"), "2006/1/2 15:04:05"},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(localeLayouts))
	for i, l := range localeLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// LocaleLayout returns the time layout used for a locale tag such as "de-DE".
// Well-formed tags without a supported match fall back to en-US.
func LocaleLayout(locale string) (string, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	_, idx, _ := localeMatcher.Match(tag)
	return localeLayouts[idx].layout, nil
}

// NewLocaleFormatter builds a formatter that renders timestamps in loc using
// the layout of locale. Values that cannot be parsed are passed through as-is.
func NewLocaleFormatter(locale string, loc *time.Location) (TimestampFormatter, error) {
	layout, err := LocaleLayout(locale)
	if err != nil {
		return nil, err
	}
	return LayoutFormatter(layout, loc), nil
}

// LayoutFormatter renders parsed timestamps with a fixed Go layout
func LayoutFormatter(layout string, loc *time.Location) TimestampFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return func(raw string) string {
		t, ok := parseTimestamp(raw, loc)
		if !ok {
			return raw
		}
		return t.In(loc).Format(layout)
	}
}

// DefaultFormatter renders en-US style timestamps in UTC
var DefaultFormatter = LayoutFormatter(localeLayouts[0].layout, time.UTC)

func parseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
