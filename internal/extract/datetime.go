package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date format produced by the resolvers.
const DateLayout = "2006-01-02"

var (
	relativeDayPattern    = regexp.MustCompile(`\b(tomorrow|today)\b`)
	weekdayPattern        = regexp.MustCompile(`\b(` + weekdayAlternation + `)\b`)
	weekdayNumericPattern = regexp.MustCompile(
		`\b(` + weekdayAlternation + `|mon|tues?|wed|thu(?:rs?)?|fri|sat|sun)\.?,?\s+(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	monthNamePattern   = regexp.MustCompile(
		`\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)

	clockMeridiemPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*([ap])\.?m\b\.?`)
	hourMeridiemPattern  = regexp.MustCompile(`\b(\d{1,2})\s*([ap])\.?m\b\.?`)
	clock24Pattern       = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)

	timezonePattern = regexp.MustCompile(`\b(` + timezoneAlternation + `)\b`)
)

type dateInput struct {
	text  string
	today time.Time
}

var dateRules = cascade[dateInput, time.Time]{
	{name: "relative-day", apply: resolveRelativeDay},
	{name: "weekday", apply: resolveBareWeekday},
	{name: "weekday-numeric", apply: resolveWeekdayNumeric},
	{name: "numeric", apply: resolveNumericDate},
	{name: "month-name", apply: resolveMonthName},
}

var timeRules = cascade[string, string]{
	{name: "clock-meridiem", apply: resolveClockMeridiem},
	{name: "hour-meridiem", apply: resolveHourMeridiem},
	{name: "clock-24h", apply: resolveClock24},
}

// ResolveDate finds the first date reference in text and returns it as
// YYYY-MM-DD. Relative references resolve against now's calendar day in
// now's location.
func ResolveDate(text string, now time.Time) (string, bool) {
	in := dateInput{text: strings.ToLower(text), today: midnight(now)}
	d, _, ok := dateRules.first(in)
	if !ok {
		return "", false
	}
	return d.Format(DateLayout), true
}

// ResolveTime finds the first time of day in text. Twelve-hour times
// come back as "H:MM am"; twenty-four-hour times as "HH:MM".
func ResolveTime(text string) (string, bool) {
	t, _, ok := timeRules.first(strings.ToLower(text))
	return t, ok
}

// ResolveTimezone returns the first recognised timezone abbreviation in
// text, upper-cased.
func ResolveTimezone(text string) (string, bool) {
	m := timezonePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// DateTime is the combined result of the three resolvers.
type DateTime struct {
	Date     string
	Time     string
	Timezone string
}

// ResolveDateTime resolves each field independently, searching the body
// first and the subject second.
func ResolveDateTime(t Text, now time.Time) DateTime {
	var dt DateTime
	for _, s := range t.lowerSources() {
		if dt.Date == "" {
			dt.Date, _ = ResolveDate(s, now)
		}
		if dt.Time == "" {
			dt.Time, _ = ResolveTime(s)
		}
		if dt.Timezone == "" {
			dt.Timezone, _ = ResolveTimezone(s)
		}
	}
	return dt
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func resolveRelativeDay(in dateInput) (time.Time, bool) {
	m := relativeDayPattern.FindStringSubmatch(in.text)
	if m == nil {
		return time.Time{}, false
	}
	if m[1] == "tomorrow" {
		return in.today.AddDate(0, 0, 1), true
	}
	return in.today, true
}

// resolveBareWeekday matches a full weekday name that is not the head of
// a valid "weekday M/D" compound, which the next rule handles.
func resolveBareWeekday(in dateInput) (time.Time, bool) {
	compound := make(map[int]bool)
	for _, m := range weekdayNumericPattern.FindAllStringSubmatchIndex(in.text, -1) {
		year := ""
		if m[8] >= 0 {
			year = in.text[m[8]:m[9]]
		}
		if _, ok := numericDate(in.text[m[4]:m[5]], in.text[m[6]:m[7]], year, in.today); ok {
			compound[m[0]] = true
		}
	}
	for _, loc := range weekdayPattern.FindAllStringSubmatchIndex(in.text, -1) {
		if compound[loc[0]] {
			continue
		}
		wd := weekdayNames[in.text[loc[2]:loc[3]]]
		return nextWeekday(in.today, wd), true
	}
	return time.Time{}, false
}

// nextWeekday returns the first date strictly after today that falls on
// wd. A reference to today's weekday means next week.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

func resolveWeekdayNumeric(in dateInput) (time.Time, bool) {
	for _, m := range weekdayNumericPattern.FindAllStringSubmatch(in.text, -1) {
		if d, ok := numericDate(m[2], m[3], m[4], in.today); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func resolveNumericDate(in dateInput) (time.Time, bool) {
	for _, m := range numericDatePattern.FindAllStringSubmatch(in.text, -1) {
		if d, ok := numericDate(m[1], m[2], m[3], in.today); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func resolveMonthName(in dateInput) (time.Time, bool) {
	for _, m := range monthNamePattern.FindAllStringSubmatch(in.text, -1) {
		month := monthPrefixes[m[1][:3]]
		day, _ := strconv.Atoi(m[2])
		if d, ok := calendarDate(month, day, m[3], in.today); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func numericDate(monthStr, dayStr, yearStr string, today time.Time) (time.Time, bool) {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(time.Month(month), day, yearStr, today)
}

// calendarDate builds a validated date. Without an explicit year the
// current year is assumed and rolled forward when the date has passed;
// an explicit year is taken as written.
func calendarDate(month time.Month, day int, yearStr string, today time.Time) (time.Time, bool) {
	if yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
		if len(yearStr) == 2 {
			year += 2000
		}
		return validDate(year, month, day, today.Location())
	}

	d, ok := validDate(today.Year(), month, day, today.Location())
	if ok && d.Before(today) {
		d, ok = validDate(today.Year()+1, month, day, today.Location())
	}
	return d, ok
}

func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func resolveClockMeridiem(text string) (string, bool) {
	for _, m := range clockMeridiemPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%d:%02d %sm", hour, minute, m[3]), true
	}
	return "", false
}

func resolveHourMeridiem(text string) (string, bool) {
	for _, m := range hourMeridiemPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		if hour < 1 || hour > 12 {
			continue
		}
		return fmt.Sprintf("%d:00 %sm", hour, m[2]), true
	}
	return "", false
}

func resolveClock24(text string) (string, bool) {
	m := clock24Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", hour, m[2]), true
}
