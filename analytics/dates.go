package analytics

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period classifies a parsed date range for chart labeling.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodCustom  Period = "custom"
)

// DateRange is a resolved inclusive date range.
type DateRange struct {
	Start  time.Time
	End    time.Time
	Period Period
}

// SpanDays returns the inclusive day count of the range.
func (r DateRange) SpanDays() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

var (
	explicitRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*to\s*(\d{4}-\d{2}-\d{2})`)
	lastWeeksRe     = regexp.MustCompile(`(?:last|past|previous)\s+(\d+)\s+weeks?`)
	lastMonthsRe    = regexp.MustCompile(`(?:last|past|previous)\s+(\d+)\s+months?`)
	lastYearsRe     = regexp.MustCompile(`(?:last|past|previous)\s+(\d+)\s+years?`)
	lastDaysRe      = regexp.MustCompile(`(?:last|past|previous)\s+(\d+)\s+days?`)
	quarterRe       = regexp.MustCompile(`q([1-4])\s*(\d{4})?`)
	lastQuarterRe   = regexp.MustCompile(`last\s+quarter`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "july": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// monthOrder lists full month names before their abbreviations so that
// "september" is not consumed by the "sep" pattern.
var monthOrder = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "aug", "sep", "oct", "nov", "dec",
}

type monthPattern struct {
	month time.Month
	of    *regexp.Regexp
	year  *regexp.Regexp
	last  *regexp.Regexp
}

// monthPatterns holds the compiled per-month expressions in monthOrder
// precedence, built once at startup.
var monthPatterns = func() []monthPattern {
	out := make([]monthPattern, len(monthOrder))
	for i, name := range monthOrder {
		out[i] = monthPattern{
			month: monthNames[name],
			of:    regexp.MustCompile(`month\s+of\s+` + name),
			year:  regexp.MustCompile(name + `\s+(\d{4})`),
			last:  regexp.MustCompile(`last\s+` + name),
		}
	}
	return out
}()

// ParseDateRange resolves a natural-language date expression against
// today. It is the local fallback for when the LLM server does not
// supply concrete dates. The second return value is false when the
// query contains no recognizable date expression.
func ParseDateRange(query string, today time.Time) (DateRange, bool) {
	lower := strings.ToLower(query)
	today = midnight(today)
	yesterday := today.AddDate(0, 0, -1)

	if m := explicitRangeRe.FindStringSubmatch(query); m != nil {
		start, err1 := time.Parse("2006-01-02", m[1])
		end, err2 := time.Parse("2006-01-02", m[2])
		if err1 == nil && err2 == nil {
			return DateRange{Start: start, End: end, Period: PeriodCustom}, true
		}
	}

	if m := lastWeeksRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return DateRange{Start: yesterday.AddDate(0, 0, -7*n), End: yesterday, Period: PeriodWeekly}, true
	}

	if m := lastMonthsRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		// Months approximated as 30 days each.
		return DateRange{Start: yesterday.AddDate(0, 0, -30*n), End: yesterday, Period: PeriodMonthly}, true
	}

	if m := lastYearsRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		start := time.Date(today.Year()-n, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		return DateRange{Start: start, End: yesterday, Period: PeriodYearly}, true
	}

	if m := lastDaysRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return DateRange{
			Start:  yesterday.AddDate(0, 0, -(n - 1)),
			End:    yesterday,
			Period: periodForDayCount(n),
		}, true
	}

	if r, ok := parseNamedMonth(lower, today); ok {
		return r, true
	}

	if lastQuarterRe.MatchString(lower) {
		return previousQuarter(today), true
	}

	if m := quarterRe.FindStringSubmatch(lower); m != nil {
		q, _ := strconv.Atoi(m[1])
		year := today.Year()
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		return quarterRange(year, q), true
	}

	return parsePhrase(lower, today)
}

// periodForDayCount classifies a "last N days" request.
func periodForDayCount(n int) Period {
	switch {
	case n <= 10:
		return PeriodDaily
	case n <= 35:
		return PeriodWeekly
	case n <= 400:
		return PeriodMonthly
	default:
		return PeriodYearly
	}
}

func parseNamedMonth(lower string, today time.Time) (DateRange, bool) {
	for _, p := range monthPatterns {
		if p.of.MatchString(lower) {
			return monthRange(today.Year(), p.month), true
		}

		if m := p.year.FindStringSubmatch(lower); m != nil {
			year, _ := strconv.Atoi(m[1])
			return monthRange(year, p.month), true
		}

		if p.last.MatchString(lower) {
			year := today.Year()
			if today.Month() <= p.month {
				year--
			}
			return monthRange(year, p.month), true
		}
	}
	return DateRange{}, false
}

func parsePhrase(lower string, today time.Time) (DateRange, bool) {
	yesterday := today.AddDate(0, 0, -1)

	switch {
	case containsAny(lower, "last week", "past week", "previous week"):
		return DateRange{Start: yesterday.AddDate(0, 0, -6), End: yesterday, Period: PeriodWeekly}, true

	case containsAny(lower, "this week", "current week"):
		return DateRange{Start: mondayOf(today), End: today, Period: PeriodWeekly}, true

	case containsAny(lower, "last month", "past month", "previous month"):
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		prev := first.AddDate(0, -1, 0)
		return DateRange{Start: prev, End: first.AddDate(0, 0, -1), Period: PeriodMonthly}, true

	case containsAny(lower, "this month", "current month"):
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Start: first, End: today, Period: PeriodMonthly}, true

	case containsAny(lower, "last year", "past year", "previous year"):
		return DateRange{
			Start:  time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC),
			Period: PeriodYearly,
		}, true

	case containsAny(lower, "this year", "current year"):
		return DateRange{
			Start:  time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
			End:    today,
			Period: PeriodYearly,
		}, true
	}

	return DateRange{}, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func monthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start:  start,
		End:    start.AddDate(0, 1, 0).AddDate(0, 0, -1),
		Period: PeriodMonthly,
	}
}

func quarterRange(year, quarter int) DateRange {
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start:  start,
		End:    start.AddDate(0, 3, 0).AddDate(0, 0, -1),
		Period: PeriodMonthly,
	}
}

func previousQuarter(today time.Time) DateRange {
	quarter := (int(today.Month())-1)/3 + 1
	year := today.Year()
	if quarter == 1 {
		quarter = 4
		year--
	} else {
		quarter--
	}
	return quarterRange(year, quarter)
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t).AddDate(0, 0, -offset)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
