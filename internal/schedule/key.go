// Package schedule packs a training group's weekly slots into a string key
// and back.
//
// A key is a "|"-joined, sorted list of day:startHH:startMM:endHH:endMM
// segments, days being ISO weekdays 1 (Monday) .. 7 (Sunday):
//
//	1:16:00:17:00|3:16:00:17:00
//
// Every day of a group shares one slot, so decoding takes start and duration
// from the first segment only.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultStart    = "16:00"
	DefaultDuration = 60 // минут

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidDay      = errors.New("schedule: day must be 1..7")
	ErrInvalidStart    = errors.New("schedule: start must be HH:MM")
	ErrInvalidDuration = errors.New("schedule: duration must be positive and shorter than a day")
)

var dayShort = [...]string{"", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// Slot is the decoded form of a key.
type Slot struct {
	Days     []int
	Start    string // HH:MM
	Duration int    // минут
}

// Default is what an empty or malformed key decodes to.
func Default() Slot {
	return Slot{Days: []int{}, Start: DefaultStart, Duration: DefaultDuration}
}

// Encode packs days sharing one slot. An empty day set encodes to "".
func Encode(days []int, start string, duration int) (string, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return "", err
	}
	if duration <= 0 || duration >= minutesPerDay {
		return "", ErrInvalidDuration
	}

	seen := make(map[int]bool, len(days))
	segments := make([]string, 0, len(days))
	endMin := (startMin + duration) % minutesPerDay
	for _, d := range days {
		if d < 1 || d > 7 {
			return "", fmt.Errorf("%w: %d", ErrInvalidDay, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		segments = append(segments, fmt.Sprintf("%d:%02d:%02d:%02d:%02d",
			d, startMin/60, startMin%60, endMin/60, endMin%60))
	}

	sort.Strings(segments)
	return strings.Join(segments, "|"), nil
}

// Decode unpacks a key. Any malformed segment makes the whole key decode to
// Default().
func Decode(key string) Slot {
	key = strings.TrimSpace(key)
	if key == "" {
		return Default()
	}

	var (
		slot  Slot
		seen  = make(map[int]bool)
		first = true
	)
	for _, segment := range strings.Split(key, "|") {
		day, startMin, endMin, ok := parseSegment(segment)
		if !ok {
			return Default()
		}
		if first {
			slot.Start = fmt.Sprintf("%02d:%02d", startMin/60, startMin%60)
			slot.Duration = (endMin - startMin + minutesPerDay) % minutesPerDay
			if slot.Duration == 0 {
				return Default()
			}
			first = false
		}
		if !seen[day] {
			seen[day] = true
			slot.Days = append(slot.Days, day)
		}
	}

	sort.Ints(slot.Days)
	return slot
}

// End returns the HH:MM the slot finishes at.
func (s Slot) End() string {
	startMin, err := parseClock(s.Start)
	if err != nil {
		return ""
	}
	endMin := (startMin + s.Duration) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", endMin/60, endMin%60)
}

// HasDay reports whether the slot runs on the given ISO weekday.
func (s Slot) HasDay(day int) bool {
	for _, d := range s.Days {
		if d == day {
			return true
		}
	}
	return false
}

// String renders "Пн, Ср 16:00–17:00"; an empty day set renders as "—".
func (s Slot) String() string {
	if len(s.Days) == 0 {
		return "—"
	}
	names := make([]string, 0, len(s.Days))
	for _, d := range s.Days {
		names = append(names, DayName(d))
	}
	return fmt.Sprintf("%s %s–%s", strings.Join(names, ", "), s.Start, s.End())
}

func DayName(day int) string {
	if day < 1 || day > 7 {
		return "?"
	}
	return dayShort[day]
}

// ISOWeekday maps time.Weekday (Sunday = 0) to 1..7 (Monday = 1).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, ErrInvalidStart
	}
	if !twoDigits(h) || !twoDigits(m) {
		return 0, ErrInvalidStart
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, ErrInvalidStart
	}
	return hh*60 + mm, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

func parseSegment(segment string) (day, startMin, endMin int, ok bool) {
	parts := strings.Split(segment, ":")
	if len(parts) != 5 {
		return 0, 0, 0, false
	}

	nums := make([]int, 5)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}

	day = nums[0]
	if day < 1 || day > 7 {
		return 0, 0, 0, false
	}
	if nums[1] > 23 || nums[3] > 23 || nums[2] > 59 || nums[4] > 59 ||
		nums[1] < 0 || nums[2] < 0 || nums[3] < 0 || nums[4] < 0 {
		return 0, 0, 0, false
	}
	return day, nums[1]*60 + nums[2], nums[3]*60 + nums[4], true
}
