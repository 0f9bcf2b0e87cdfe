package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

// ==========================
// Date Phrase Recognizer
// ==========================

func TestFindDateTokens(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"none", "What was the GMV of Flipkart?", []string{}},
		{"relative phrase", "GMV of Flipkart last year", []string{"last year"}},
		{"phrase is case insensitive and lower-cased", "GMV of Flipkart Last Year", []string{"last year"}},
		{"day first slashes", "sales from 1/2/2023 to 31/12/2023", []string{"1/2/2023", "31/12/2023"}},
		{"day first dashes", "sales from 01-02-2023", []string{"01-02-2023"}},
		{"iso like", "sales since 2023-1-5", []string{"2023-1-5"}},
		{"mixed in order of appearance", "this year versus 2022-01-01 and previous month", []string{"this year", "2022-01-01", "previous month"}},
		{"calendar nonsense still a token", "loss on 31/02/2024", []string{"31/02/2024"}},
		{"month and year only is not a token", "loss in 12/2023", []string{}},
		{"quarter", "profit up to last quarter", []string{"last quarter"}},
		{"phrase inside a word is ignored", "pastlast year", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindDateTokens(tt.query))
		})
	}
}

func TestDateTokens_FirstIsStartSecondIsEndRestDiscarded(t *testing.T) {
	start, end := DateTokens("from 1/1/2022 to 1/1/2023 and also 1/1/2024")
	assert.Equal(t, "1/1/2022", start)
	assert.Equal(t, "1/1/2023", end)

	start, end = DateTokens("revenue last year")
	assert.Equal(t, "last year", start)
	assert.Equal(t, "", end)

	start, end = DateTokens("revenue")
	assert.Equal(t, "", start)
	assert.Equal(t, "", end)
}

// ==========================
// Date Range Resolver
// ==========================

func TestResolveDateRange(t *testing.T) {
	today := day(2024, time.May, 15)

	tests := []struct {
		name       string
		start, end string
		today      time.Time
		want       ResolvedRange
	}{
		{"both absent", "", "", today, ResolvedRange{"2023-05-16", "2024-05-15"}},
		{"last year start", PhraseLastYear, "", today, ResolvedRange{"2023-01-01", "2024-05-15"}},
		{"this year start", PhraseThisYear, "", today, ResolvedRange{"2024-01-01", "2024-05-15"}},
		{"previous month end", "", PhrasePreviousMonth, today, ResolvedRange{"2023-05-16", "2024-04-30"}},
		{"last quarter end", "", PhraseLastQuarter, today, ResolvedRange{"2023-05-16", "2024-03-31"}},
		{"this year end", "", PhraseThisYear, today, ResolvedRange{"2023-05-16", "2024-12-31"}},
		{"absolute dates pass through", "1/1/2023", "31/12/2023", today, ResolvedRange{"1/1/2023", "31/12/2023"}},
		{"end phrase on the start side passes through", PhraseLastQuarter, "", today, ResolvedRange{"last quarter", "2024-05-15"}},
		{"start phrase on the end side passes through", "", PhraseLastYear, today, ResolvedRange{"2023-05-16", "last year"}},
		{"this year on both sides", PhraseThisYear, PhraseThisYear, today, ResolvedRange{"2024-01-01", "2024-12-31"}},
		{"unknown token passes through", "someday", "whenever", today, ResolvedRange{"someday", "whenever"}},
		{"previous month across a year boundary", "", PhrasePreviousMonth, day(2024, time.January, 10), ResolvedRange{"2023-01-10", "2023-12-31"}},
		{"previous month in a leap year", "", PhrasePreviousMonth, day(2024, time.March, 15), ResolvedRange{"2023-03-16", "2024-02-29"}},
		{"last quarter from the first quarter", "", PhraseLastQuarter, day(2024, time.February, 29), ResolvedRange{"2023-03-01", "2023-12-31"}},
		{"last quarter from the fourth quarter", "", PhraseLastQuarter, day(2026, time.October, 15), ResolvedRange{"2025-10-15", "2026-09-30"}},
		{"last quarter on a quarter's first day", "", PhraseLastQuarter, day(2025, time.July, 1), ResolvedRange{"2024-07-01", "2025-06-30"}},
		{"last year start on the last day of a leap year", PhraseLastYear, "", day(2024, time.December, 31), ResolvedRange{"2023-01-01", "2024-12-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDateRange(tt.start, tt.end, tt.today))
		})
	}
}

func TestResolveDateRange_UsesReferenceLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 2024-04-01 01:00 in Kolkata is still March 31st in UTC.
	today := time.Date(2024, time.April, 1, 1, 0, 0, 0, kolkata)

	got := ResolveDateRange("", PhrasePreviousMonth, today)

	assert.Equal(t, "2024-03-31", got.End)
	assert.Equal(t, "2023-04-02", got.Start)
}

func TestResolver_NormalizeAbsolute(t *testing.T) {
	r := Resolver{NormalizeAbsolute: true}
	today := day(2024, time.May, 15)

	tests := []struct {
		name       string
		start, end string
		want       ResolvedRange
	}{
		{"day first slashes", "1/2/2023", "31/12/2023", ResolvedRange{"2023-02-01", "2023-12-31"}},
		{"day first dashes", "05-06-2023", "", ResolvedRange{"2023-06-05", "2024-05-15"}},
		{"year first unpadded", "2023-6-5", "2023-12-1", ResolvedRange{"2023-06-05", "2023-12-01"}},
		{"mixed separators", "5/6-2023", "", ResolvedRange{"2023-06-05", "2024-05-15"}},
		{"impossible date passes through", "31/02/2024", "", ResolvedRange{"31/02/2024", "2024-05-15"}},
		{"relative phrases still resolve", PhraseLastYear, PhraseLastQuarter, ResolvedRange{"2023-01-01", "2024-03-31"}},
		{"wrong side phrase still passes through", PhrasePreviousMonth, "", ResolvedRange{"previous month", "2024-05-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.start, tt.end, today))
		})
	}
}

func TestResolveDateRange_Deterministic(t *testing.T) {
	today := day(2025, time.August, 20)
	first := ResolveDateRange(PhraseLastYear, PhrasePreviousMonth, today)
	second := ResolveDateRange(PhraseLastYear, PhrasePreviousMonth, today)
	assert.Equal(t, first, second)
}
