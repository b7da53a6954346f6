package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxTimerDuration bounds what ParseSeconds accepts.
const MaxTimerDuration = 7 * 24 * time.Hour

var (
	clockPattern  = regexp.MustCompile(`^(\d+):([0-5]?\d)(?::([0-5]?\d))?$`)
	amountPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]*)`)
	halfPattern   = regexp.MustCompile(`(\d+)\s*(hours?|hrs?|minutes?|mins?)\s+and\s+1\s+half`)
	wordNumber    = regexp.MustCompile(`\b(an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|fifteen|twenty|thirty|forty-five|forty|sixty)\b`)
)

var wordValues = map[string]string{
	"a": "1", "an": "1", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"ten": "10", "eleven": "11", "twelve": "12", "fifteen": "15",
	"twenty": "20", "thirty": "30", "forty": "40", "forty-five": "45",
	"sixty": "60",
}

var unitSeconds = map[string]float64{
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
}

// ParseSeconds converts a spoken or typed duration into whole seconds.
//
// Accepted forms include "5 minutes", "90 seconds", "2 minutes 30 seconds",
// "1 hour and 15 minutes", "1.5 hours", "5m30s", "half an hour",
// "a minute and a half" and clock notation "1:30" (m:ss) or "1:02:03"
// (h:mm:ss). A trailing bare number counts in the next smaller unit, so
// "1 hour 30" is 90 minutes. Anything unparsable, non-positive or longer than
// MaxTimerDuration fails with ErrInvalidDuration.
func ParseSeconds(input string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration", ErrInvalidDuration)
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidDuration, input)
	}

	var (
		total float64
		err   error
	)
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		total, err = clockSeconds(m)
	} else {
		total, err = amountSeconds(s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, input, err)
	}

	// Bounded as a float: converting first would let huge values wrap.
	if total > MaxTimerDuration.Seconds() {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrInvalidDuration, input, MaxTimerDuration)
	}
	secs := int(math.Round(total))
	if secs <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidDuration, input)
	}
	return secs, nil
}

func clockSeconds(m []string) (float64, error) {
	var parts [3]float64
	for i, field := range m[1:] {
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("clock field %q: %w", field, err)
		}
		parts[i] = float64(n)
	}
	if m[3] == "" {
		return parts[0]*60 + parts[1], nil
	}
	return parts[0]*3600 + parts[1]*60 + parts[2], nil
}

func amountSeconds(s string) (float64, error) {
	s = strings.ReplaceAll(s, "half an hour", "30 minutes")
	s = strings.ReplaceAll(s, "half a minute", "30 seconds")
	s = wordNumber.ReplaceAllStringFunc(s, func(w string) string {
		return wordValues[w]
	})
	s = halfPattern.ReplaceAllString(s, "$1.5 $2")

	matches := amountPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no amount with a unit")
	}

	var total, prev float64
	for i, m := range matches {
		mult, ok := unitSeconds[m[2]]
		if m[2] == "" {
			// "1 hour 30" means 1 hour 30 minutes; any other bare number is an error.
			if i != len(matches)-1 || prev <= 1 {
				return 0, fmt.Errorf("%q has no unit", m[1])
			}
			mult, ok = prev/60, true
		}
		if !ok {
			return 0, fmt.Errorf("unknown unit %q", m[2])
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		total += v * mult
		prev = mult
	}
	return total, nil
}

// FormatSeconds renders a duration the way a cook would say it.
func FormatSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	var parts []string
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, plural(s, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
