package domain

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:30", want: NewTimeOfDay(9, 30, 0)},
		{in: "9:30", want: NewTimeOfDay(9, 30, 0)},
		{in: "15:04:05", want: NewTimeOfDay(15, 4, 5)},
		{in: "2pm", want: NewTimeOfDay(14, 0, 0)},
		{in: "2:30 PM", want: NewTimeOfDay(14, 30, 0)},
		{in: "12pm", want: NewTimeOfDay(12, 0, 0)},
		{in: "12am", want: NewTimeOfDay(0, 0, 0)},
		{in: "  10:00  ", want: NewTimeOfDay(10, 0, 0)},
		{in: "0:00", want: DayStart},
		{in: "23:59:59", want: DayEnd},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "half past ten", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeOfDay(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayArithmetic(t *testing.T) {
	ten := NewTimeOfDay(10, 0, 0)

	if got := ten.AddMinutes(90); got != NewTimeOfDay(11, 30, 0) {
		t.Fatalf("AddMinutes(90) = %v", got)
	}
	if got := NewTimeOfDay(23, 30, 0).AddMinutes(60); got != NewTimeOfDay(0, 30, 0) {
		t.Fatalf("wraparound AddMinutes = %v", got)
	}
	if got := ten.AddMinutes(-30); got != NewTimeOfDay(9, 30, 0) {
		t.Fatalf("AddMinutes(-30) = %v", got)
	}

	if got := MinutesBetween(ten, NewTimeOfDay(11, 30, 0)); got != 90 {
		t.Fatalf("MinutesBetween = %d, want 90", got)
	}
	if got := MinutesBetween(ten, NewTimeOfDay(9, 0, 0)); got != 0 {
		t.Fatalf("negative MinutesBetween = %d, want 0", got)
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay

	if err := tod.Scan(time.Date(2000, 1, 1, 14, 30, 15, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time.Time) error: %v", err)
	}
	if tod != NewTimeOfDay(14, 30, 15) {
		t.Fatalf("Scan(time.Time) = %v", tod)
	}

	if err := tod.Scan("09:15:00"); err != nil {
		t.Fatalf("Scan(string) error: %v", err)
	}
	if tod != NewTimeOfDay(9, 15, 0) {
		t.Fatalf("Scan(string) = %v", tod)
	}

	if err := tod.Scan([]byte("18:00")); err != nil {
		t.Fatalf("Scan([]byte) error: %v", err)
	}
	if tod != NewTimeOfDay(18, 0, 0) {
		t.Fatalf("Scan([]byte) = %v", tod)
	}

	if err := tod.Scan(42); err == nil {
		t.Fatal("Scan(int) should fail")
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2025-01-06 is a Monday.
	for i := 0; i < 7; i++ {
		d := DateOf(2025, time.January, 6+i)
		if got := WeekdayIndex(d); got != i {
			t.Fatalf("WeekdayIndex(%s) = %d, want %d", d.Format("2006-01-02"), got, i)
		}
	}
}

func TestAt(t *testing.T) {
	d := DateOf(2025, time.June, 1)
	got := At(d, NewTimeOfDay(8, 45, 0))
	want := time.Date(2025, time.June, 1, 8, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("At = %v, want %v", got, want)
	}
}
