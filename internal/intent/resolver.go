// internal/intent/resolver.go
package intent

import "time"

// ISODate is the layout of every date the resolver produces.
const ISODate = "2006-01-02"

var absoluteLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"2-1-2006",
	"2/1-2006",
	"2-1/2006",
}

// Resolver turns raw start/end tokens into a concrete range.
//
// Relative phrases are only honoured on the side they are defined for:
// "last year" and "this year" for the start, "last quarter",
// "previous month" and "this year" for the end. Any other token, including
// absolute dates, passes through unchanged unless NormalizeAbsolute is set.
type Resolver struct {
	// NormalizeAbsolute rewrites absolute tokens that are real calendar
	// dates (D/M/YYYY, D-M-YYYY, YYYY-M-D) to ISO-8601.
	NormalizeAbsolute bool
}

// Resolve applies the start and end rules independently against today.
func (r Resolver) Resolve(start, end string, today time.Time) ResolvedRange {
	return ResolvedRange{
		Start: r.resolveStart(start, today),
		End:   r.resolveEnd(end, today),
	}
}

func (r Resolver) resolveStart(token string, today time.Time) string {
	switch token {
	case "":
		return today.AddDate(0, 0, -365).Format(ISODate)
	case PhraseLastYear:
		return date(today.Year()-1, time.January, 1, today.Location()).Format(ISODate)
	case PhraseThisYear:
		return date(today.Year(), time.January, 1, today.Location()).Format(ISODate)
	default:
		return r.passThrough(token)
	}
}

func (r Resolver) resolveEnd(token string, today time.Time) string {
	loc := today.Location()
	switch token {
	case "":
		return today.Format(ISODate)
	case PhraseLastQuarter:
		quarterStart := time.Month((int(today.Month())-1)/3*3 + 1)
		return date(today.Year(), quarterStart, 1, loc).AddDate(0, 0, -1).Format(ISODate)
	case PhrasePreviousMonth:
		return date(today.Year(), today.Month(), 1, loc).AddDate(0, 0, -1).Format(ISODate)
	case PhraseThisYear:
		return date(today.Year(), time.December, 31, loc).Format(ISODate)
	default:
		return r.passThrough(token)
	}
}

func (r Resolver) passThrough(token string) string {
	if !r.NormalizeAbsolute {
		return token
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format(ISODate)
		}
	}
	return token
}

// ResolveDateRange resolves with the default resolver, leaving absolute
// tokens untouched.
func ResolveDateRange(start, end string, today time.Time) ResolvedRange {
	return Resolver{}.Resolve(start, end, today)
}

func date(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
