package config

import (
	"time"

	"github.com/mrlokans/koreader-highlights/internal/entities"
)

// DateOptions are the user-supplied date inputs. Empty strings and a nil
// LastDays mean "not set"; a LastDays pointing at 0 is set and rejected.
type DateOptions struct {
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD
	LastDays *int
}

// ResolveDateRange turns the date options into a concrete inclusive range.
//
// The rules apply in order:
//   - --from/--to combined with --last is rejected
//   - --last N covers the N days before today
//   - --to without --from is rejected
//   - --from alone runs until yesterday
//   - no input covers the current week, starting on Sunday, up to yesterday
//
// Today itself is never included by the defaults since its reading
// session is usually still in progress.
func ResolveDateRange(opts DateOptions, today time.Time) (entities.DateRange, error) {
	today = entities.DateOf(today)
	yesterday := today.AddDate(0, 0, -1)

	hasExplicit := opts.From != "" || opts.To != ""
	hasLast := opts.LastDays != nil

	if hasExplicit && hasLast {
		return entities.DateRange{}, ErrMutuallyExclusiveFlags
	}

	if hasLast {
		// N = 0 would end the range before it starts.
		if *opts.LastDays <= 0 {
			return entities.DateRange{}, ErrInvalidDateRange
		}
		return lastNDays(today, *opts.LastDays), nil
	}

	if opts.To != "" && opts.From == "" {
		return entities.DateRange{}, ErrMissingFromDate
	}

	if opts.From != "" {
		from, err := ParseDate(opts.From)
		if err != nil {
			return entities.DateRange{}, err
		}

		to := yesterday
		if opts.To != "" {
			to, err = ParseDate(opts.To)
			if err != nil {
				return entities.DateRange{}, err
			}
		}

		if from.After(to) {
			return entities.DateRange{}, ErrInvalidDateRange
		}
		return entities.DateRange{From: from, To: to}, nil
	}

	return weekRange(today), nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(entities.DateLayout, s)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	return t, nil
}

// weekRange covers the last Sunday up to yesterday. A run on Sunday reaches
// back to the previous Sunday so it reports the full week just finished.
func weekRange(today time.Time) entities.DateRange {
	daysSinceSunday := int(today.Weekday())
	if today.Weekday() == time.Sunday {
		daysSinceSunday = 7
	}

	return entities.DateRange{
		From: today.AddDate(0, 0, -daysSinceSunday),
		To:   today.AddDate(0, 0, -1),
	}
}

func lastNDays(today time.Time, days int) entities.DateRange {
	return entities.DateRange{
		From: today.AddDate(0, 0, -days),
		To:   today.AddDate(0, 0, -1),
	}
}
