package service

import (
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	cases := []struct {
		clock string
		want  string
	}{
		{"09:30", "0 30 9 * * *"},
		{"00:00", "0 0 0 * * *"},
		{"23:59", "0 59 23 * * *"},
	}
	for _, tc := range cases {
		spec, err := dailySpec(tc.clock)
		if err != nil {
			t.Fatalf("dailySpec(%q) returned error: %v", tc.clock, err)
		}
		if spec != tc.want {
			t.Fatalf("dailySpec(%q) = %q, want %q", tc.clock, spec, tc.want)
		}
	}

	for _, clock := range []string{"", "24:00", "9h30", "12:60", "noon"} {
		if _, err := dailySpec(clock); err == nil {
			t.Fatalf("expected dailySpec(%q) to be rejected", clock)
		}
	}
}

func TestScheduleDailyRegistersJob(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	id, err := s.ScheduleDaily("08:15", func() {})
	if err != nil {
		t.Fatalf("ScheduleDaily returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a cron entry id")
	}
}

func TestScheduleIntervalRejectsSubSecond(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if _, err := s.ScheduleInterval(500*time.Millisecond, func() {}); err == nil {
		t.Fatal("expected a sub-second interval to be rejected")
	}
	if _, err := s.ScheduleInterval(90*time.Minute, func() {}); err != nil {
		t.Fatalf("ScheduleInterval returned error: %v", err)
	}
}
