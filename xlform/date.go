package xlform

import (
	"fmt"
	"math"
	"time"
)

// DateSystem selects the serial-date epoch a workbook uses.
type DateSystem int

const (
	DateSystem1900 DateSystem = 0
	DateSystem1904 DateSystem = 1
)

// jdnDelta converts between serial day counts and Julian day numbers for
// the two date systems.
var jdnDelta = [2]int{2415080 - 61, 2416482 - 1}

// Serial day counts at Gregorian year 10000.
const (
	serialTooLarge1900 = 2958466
	serialTooLarge1904 = 2958466 - 1462
)

var (
	epoch1904       = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	epoch1900       = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1900Minus1 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DateError is the base type for all serial-date conversion errors.
type DateError struct {
	Message string
}

func (e *DateError) Error() string {
	return e.Message
}

// DateNegativeError indicates a serial below 0.0.
type DateNegativeError struct {
	DateError
}

// DateAmbiguousError indicates a 1900-system serial below 61, where the
// historical leap-year defect makes the calendar date ambiguous.
type DateAmbiguousError struct {
	DateError
}

// DateTooLargeError indicates Gregorian year 10000 or later.
type DateTooLargeError struct {
	DateError
}

// BadDateSystemError indicates a DateSystem other than 1900 or 1904.
type BadDateSystemError struct {
	DateError
}

// BadDatePartsError indicates out-of-range year/month/day or clock parts.
type BadDatePartsError struct {
	DateError
}

// leap returns 1 if year is a leap year, 0 otherwise.
func leap(y int) int {
	if y%4 != 0 {
		return 0
	}
	if y%100 != 0 {
		return 1
	}
	if y%400 != 0 {
		return 0
	}
	return 1
}

// SerialToParts converts a serial date number into Gregorian
// (year, month, day, hour, minute, nearest second) parts.
//
// If 0.0 <= serial < 1.0 it is taken as a pure time of day and the date
// parts come back zero. 1900-system serials below 61 predate the epoch of
// the leap-year defect and are rejected as ambiguous.
func SerialToParts(serial float64, ds DateSystem) (year, month, day, hour, minute, second int, err error) {
	if ds != DateSystem1900 && ds != DateSystem1904 {
		return 0, 0, 0, 0, 0, 0, &BadDateSystemError{DateError{Message: fmt.Sprintf("invalid date system: %d", ds)}}
	}
	if serial == 0.0 {
		return 0, 0, 0, 0, 0, 0, nil
	}
	if serial < 0.0 {
		return 0, 0, 0, 0, 0, 0, &DateNegativeError{DateError{Message: fmt.Sprintf("serial < 0.00: %f", serial)}}
	}
	days := int(serial)
	frac := serial - float64(days)
	seconds := int(math.Round(frac * 86400.0))
	if seconds < 0 || seconds > 86400 {
		return 0, 0, 0, 0, 0, 0, &DateError{Message: fmt.Sprintf("invalid seconds: %d", seconds)}
	}

	if seconds == 86400 {
		days++
	} else {
		minutes := seconds / 60
		second = seconds % 60
		hour = minutes / 60
		minute = minutes % 60
	}

	tooLarge := serialTooLarge1900
	if ds == DateSystem1904 {
		tooLarge = serialTooLarge1904
	}
	if days >= tooLarge {
		return 0, 0, 0, 0, 0, 0, &DateTooLargeError{DateError{Message: fmt.Sprintf("serial too large: %f", serial)}}
	}

	if days == 0 {
		return 0, 0, 0, hour, minute, second, nil
	}

	if days < 61 && ds == DateSystem1900 {
		return 0, 0, 0, 0, 0, 0, &DateAmbiguousError{DateError{Message: fmt.Sprintf("1900 leap-year problem: %f", serial)}}
	}

	jdn := days + jdnDelta[ds]
	yreg := ((((jdn*4+274277)/146097)*3/4)+jdn+1363)*4 + 3
	mp := ((yreg%1461)/4)*535 + 333
	d := ((mp % 16384) / 535) + 1
	mp >>= 14
	if mp >= 10 {
		return (yreg / 1461) - 4715, mp - 9, d, hour, minute, second, nil
	}
	return (yreg / 1461) - 4716, mp + 3, d, hour, minute, second, nil
}

// SerialToTime converts a serial date number into a UTC time.Time.
func SerialToTime(serial float64, ds DateSystem) (time.Time, error) {
	if ds != DateSystem1900 && ds != DateSystem1904 {
		return time.Time{}, &BadDateSystemError{DateError{Message: fmt.Sprintf("invalid date system: %d", ds)}}
	}
	var epoch time.Time
	if ds == DateSystem1904 {
		epoch = epoch1904
	} else if serial < 60 {
		epoch = epoch1900
	} else {
		// Work around the 1900 leap-year defect by shifting the epoch.
		epoch = epoch1900Minus1
	}

	days := int(serial)
	fraction := serial - float64(days)

	// Millisecond resolution, matching the storage precision of serials.
	milliseconds := int(math.Round(fraction * 86400000.0))
	secs := milliseconds / 1000
	ms := milliseconds % 1000

	return epoch.AddDate(0, 0, days).Add(time.Duration(secs)*time.Second + time.Duration(ms)*time.Millisecond), nil
}

// DateToSerial converts a Gregorian date to a serial date number.
func DateToSerial(year, month, day int, ds DateSystem) (float64, error) {
	if ds != DateSystem1900 && ds != DateSystem1904 {
		return 0.0, &BadDateSystemError{DateError{Message: fmt.Sprintf("invalid date system: %d", ds)}}
	}

	if year == 0 && month == 0 && day == 0 {
		return 0.00, nil
	}

	if year < 1900 || year > 9999 {
		return 0.0, &BadDatePartsError{DateError{Message: fmt.Sprintf("invalid year: (%d, %d, %d)", year, month, day)}}
	}
	if month < 1 || month > 12 {
		return 0.0, &BadDatePartsError{DateError{Message: fmt.Sprintf("invalid month: (%d, %d, %d)", year, month, day)}}
	}
	maxDay := daysInMonth[month]
	if month == 2 && leap(year) == 1 {
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return 0.0, &BadDatePartsError{DateError{Message: fmt.Sprintf("invalid day: (%d, %d, %d)", year, month, day)}}
	}

	yp := year + 4716
	var mp int
	if month <= 2 {
		yp--
		mp = month + 9
	} else {
		mp = month - 3
	}
	jdn := (1461 * yp / 4) + ((979*mp + 16) / 32) + day - 1364 - (((yp + 184) / 100) * 3 / 4)
	days := jdn - jdnDelta[ds]
	if days <= 0 {
		return 0.0, &BadDatePartsError{DateError{Message: fmt.Sprintf("invalid (year, month, day): (%d, %d, %d)", year, month, day)}}
	}
	if days < 61 && ds == DateSystem1900 {
		return 0.0, &DateAmbiguousError{DateError{Message: fmt.Sprintf("before 1900-03-01: (%d, %d, %d)", year, month, day)}}
	}
	return float64(days), nil
}

// ClockToSerial converts a time of day to the fractional part of a serial.
func ClockToSerial(hour, minute, second int) (float64, error) {
	if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 || second < 0 || second >= 60 {
		return 0.0, &BadDatePartsError{DateError{Message: fmt.Sprintf("invalid (hour, minute, second): (%d, %d, %d)", hour, minute, second)}}
	}
	return ((float64(second)/60.0+float64(minute))/60.0 + float64(hour)) / 24.0, nil
}

// DateTimeToSerial converts full Gregorian date and clock parts to a serial
// date number.
func DateTimeToSerial(year, month, day, hour, minute, second int, ds DateSystem) (float64, error) {
	datePart, err := DateToSerial(year, month, day, ds)
	if err != nil {
		return 0.0, err
	}
	timePart, err := ClockToSerial(hour, minute, second)
	if err != nil {
		return 0.0, err
	}
	return datePart + timePart, nil
}

// TimeToSerial converts a time.Time to a serial date number in the given
// date system. The location of t is respected: the wall-clock reading is
// what lands in the serial.
func TimeToSerial(t time.Time, ds DateSystem) (float64, error) {
	return DateTimeToSerial(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), ds)
}
