package pipeline

import (
	"testing"

	"moviedash/internal"
	"moviedash/internal/util"
)

func TestDurationCategory(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{85, internal.CategoryShort},
		{89, internal.CategoryShort},
		{90, internal.CategoryStandard},
		{120, internal.CategoryStandard},
		{121, internal.CategoryLong},
		{150, internal.CategoryLong},
		{151, internal.CategoryEpic},
		{400, internal.CategoryEpic},
	}
	for _, tc := range cases {
		got := DurationCategory(util.IntPtr(tc.minutes))
		if got == nil || *got != tc.want {
			t.Errorf("DurationCategory(%d) = %v want %q", tc.minutes, got, tc.want)
		}
	}
	if got := DurationCategory(nil); got != nil {
		t.Errorf("DurationCategory(nil) = %q want nil", *got)
	}
}

func TestDurationBucket(t *testing.T) {
	cases := []struct {
		name     string
		minutes  *int
		category *string
		want     string
	}{
		{name: "under two hours", minutes: util.IntPtr(119), want: "< 2 hrs"},
		{name: "two hours", minutes: util.IntPtr(120), want: "2–3 hrs"},
		{name: "three hours", minutes: util.IntPtr(180), want: "2–3 hrs"},
		{name: "over three hours", minutes: util.IntPtr(181), want: "3–4 hrs"},
		{name: "minutes win over category", minutes: util.IntPtr(100), category: util.StringPtr(internal.CategoryEpic), want: "< 2 hrs"},
		{name: "absent with epic category", category: util.StringPtr("150+ min"), want: "3–4 hrs"},
		{name: "absent with short category", category: util.StringPtr("Short"), want: "Unknown"},
		{name: "absent with long category", category: util.StringPtr("120-150 min"), want: "Unknown"},
		{name: "absent without category", want: "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DurationBucket(tc.minutes, tc.category); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
