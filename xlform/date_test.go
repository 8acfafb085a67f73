package xlform

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestSerialToParts(t *testing.T) {
	tests := []struct {
		serial  float64
		ds      DateSystem
		want    [6]int
		wantErr bool
	}{
		{2741., DateSystem1900, [6]int{1907, 7, 3, 0, 0, 0}, false},
		{38406., DateSystem1900, [6]int{2005, 2, 23, 0, 0, 0}, false},
		{32266., DateSystem1900, [6]int{1988, 5, 3, 0, 0, 0}, false},
		{38406. - 1462, DateSystem1904, [6]int{2005, 2, 23, 0, 0, 0}, false},
		{0.273611, DateSystem1900, [6]int{0, 0, 0, 6, 34, 0}, false},
		{0.538889, DateSystem1900, [6]int{0, 0, 0, 12, 56, 0}, false},
		{0.741123, DateSystem1900, [6]int{0, 0, 0, 17, 47, 13}, false},
		{0, DateSystem1900, [6]int{0, 0, 0, 0, 0, 0}, false},
		{-1, DateSystem1900, [6]int{}, true},
		{59, DateSystem1900, [6]int{}, true}, // 1900 leap-year ambiguity
		{3000000, DateSystem1900, [6]int{}, true},
	}

	for _, tt := range tests {
		year, month, day, hour, minute, second, err := SerialToParts(tt.serial, tt.ds)
		if (err != nil) != tt.wantErr {
			t.Errorf("SerialToParts(%f, %d) error = %v, wantErr %v", tt.serial, tt.ds, err, tt.wantErr)
			continue
		}
		if err == nil {
			got := [6]int{year, month, day, hour, minute, second}
			if got != tt.want {
				t.Errorf("SerialToParts(%f, %d) = %v, want %v", tt.serial, tt.ds, got, tt.want)
			}
		}
	}
}

func TestSerialToPartsErrorTypes(t *testing.T) {
	_, _, _, _, _, _, err := SerialToParts(-5, DateSystem1900)
	var negative *DateNegativeError
	if !errors.As(err, &negative) {
		t.Errorf("SerialToParts(-5) error = %T, want *DateNegativeError", err)
	}

	_, _, _, _, _, _, err = SerialToParts(30, DateSystem1900)
	var ambiguous *DateAmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Errorf("SerialToParts(30) error = %T, want *DateAmbiguousError", err)
	}

	_, _, _, _, _, _, err = SerialToParts(2958466, DateSystem1900)
	var tooLarge *DateTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Errorf("SerialToParts(2958466) error = %T, want *DateTooLargeError", err)
	}

	_, _, _, _, _, _, err = SerialToParts(100, DateSystem(7))
	var badSystem *BadDateSystemError
	if !errors.As(err, &badSystem) {
		t.Errorf("SerialToParts(100, 7) error = %T, want *BadDateSystemError", err)
	}
}

func TestDateToSerial(t *testing.T) {
	tests := []struct {
		year    int
		month   int
		day     int
		ds      DateSystem
		want    float64
		wantErr bool
	}{
		{1907, 7, 3, DateSystem1900, 2741., false},
		{2005, 2, 23, DateSystem1900, 38406., false},
		{1988, 5, 3, DateSystem1900, 32266., false},
		{2005, 2, 23, DateSystem1904, 38406. - 1462, false},
		{1899, 12, 31, DateSystem1900, 0, true},
		{1900, 1, 1, DateSystem1900, 0, true}, // before the leap-bug horizon
		{2005, 13, 1, DateSystem1900, 0, true},
		{2005, 2, 29, DateSystem1900, 0, true},
		{10000, 1, 1, DateSystem1900, 0, true},
	}

	for _, tt := range tests {
		got, err := DateToSerial(tt.year, tt.month, tt.day, tt.ds)
		if (err != nil) != tt.wantErr {
			t.Errorf("DateToSerial(%d, %d, %d, %d) error = %v, wantErr %v", tt.year, tt.month, tt.day, tt.ds, err, tt.wantErr)
			continue
		}
		if err == nil {
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("DateToSerial(%d, %d, %d, %d) = %f, want %f", tt.year, tt.month, tt.day, tt.ds, got, tt.want)
			}
		}
	}
}

func TestClockToSerial(t *testing.T) {
	tests := []struct {
		hour    int
		minute  int
		second  int
		want    float64
		wantErr bool
	}{
		{6, 34, 0, 0.273611, false},
		{12, 56, 0, 0.538889, false},
		{17, 47, 13, 0.741123, false},
		{24, 0, 0, 0, true},
		{-1, 0, 0, 0, true},
	}

	for _, tt := range tests {
		got, err := ClockToSerial(tt.hour, tt.minute, tt.second)
		if (err != nil) != tt.wantErr {
			t.Errorf("ClockToSerial(%d, %d, %d) error = %v, wantErr %v", tt.hour, tt.minute, tt.second, err, tt.wantErr)
			continue
		}
		if err == nil {
			if math.Abs(got-tt.want) > 0.000001 {
				t.Errorf("ClockToSerial(%d, %d, %d) = %f, want %f", tt.hour, tt.minute, tt.second, got, tt.want)
			}
		}
	}
}

func TestDateTimeToSerial(t *testing.T) {
	tests := []struct {
		year, month, day     int
		hour, minute, second int
		want                 float64
	}{
		{1907, 7, 3, 6, 34, 0, 2741.273611},
		{2005, 2, 23, 12, 56, 0, 38406.538889},
		{1988, 5, 3, 17, 47, 13, 32266.741123},
	}

	for _, tt := range tests {
		got, err := DateTimeToSerial(tt.year, tt.month, tt.day, tt.hour, tt.minute, tt.second, DateSystem1900)
		if err != nil {
			t.Errorf("DateTimeToSerial(%d, %d, %d, %d, %d, %d) error = %v", tt.year, tt.month, tt.day, tt.hour, tt.minute, tt.second, err)
			continue
		}
		if math.Abs(got-tt.want) > 0.000001 {
			t.Errorf("DateTimeToSerial(%d, %d, %d, %d, %d, %d) = %f, want %f", tt.year, tt.month, tt.day, tt.hour, tt.minute, tt.second, got, tt.want)
		}
	}
}

func TestSerialToTime(t *testing.T) {
	got, err := SerialToTime(38406.5, DateSystem1900)
	if err != nil {
		t.Fatalf("SerialToTime(38406.5, 1900) error = %v", err)
	}
	want := time.Date(2005, 2, 23, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("SerialToTime(38406.5, 1900) = %v, want %v", got, want)
	}

	got, err = SerialToTime(38406.5-1462, DateSystem1904)
	if err != nil {
		t.Fatalf("SerialToTime(36944.5, 1904) error = %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("SerialToTime(36944.5, 1904) = %v, want %v", got, want)
	}
}

func TestTimeToSerialRoundTrip(t *testing.T) {
	for _, ds := range []DateSystem{DateSystem1900, DateSystem1904} {
		at := time.Date(1988, 5, 3, 17, 47, 13, 0, time.UTC)
		serial, err := TimeToSerial(at, ds)
		if err != nil {
			t.Fatalf("TimeToSerial(%v, %d) error = %v", at, ds, err)
		}
		back, err := SerialToTime(serial, ds)
		if err != nil {
			t.Fatalf("SerialToTime(%f, %d) error = %v", serial, ds, err)
		}
		if !back.Equal(at) {
			t.Errorf("round trip in system %d: %v -> %f -> %v", ds, at, serial, back)
		}
	}
}
