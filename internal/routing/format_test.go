package routing_test

import (
	"testing"

	"github.com/stp-explore/ilha-server/internal/routing"
)

func TestFormatDistance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		meters float64
		want   string
	}{
		{0, "0 m"},
		{1, "1 m"},
		{850, "850 m"},
		{999.4, "999 m"},
		{999.6, "1000 m"},
		{1000, "1.0 km"},
		{1500, "1.5 km"},
		{1550, "1.6 km"},
		{12345, "12.3 km"},
	}

	for _, c := range cases {
		if got := routing.FormatDistance(c.meters); got != c.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", c.meters, got, c.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0 min"},
		{29, "0 min"},
		{31, "1 min"},
		{300, "5 min"},
		{3569, "59 min"},
		{3600, "1h 0min"},
		{5400, "1h 30min"},
		{7229, "2h 0min"},
		{9000, "2h 30min"},
	}

	for _, c := range cases {
		if got := routing.FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
