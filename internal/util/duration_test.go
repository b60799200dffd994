package util

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		name  string
		input *string
		want  *int
	}{
		{name: "hours and minutes", input: StringPtr("2h 10m"), want: IntPtr(130)},
		{name: "minutes only", input: StringPtr("45m"), want: IntPtr(45)},
		{name: "hours only", input: StringPtr("3h"), want: IntPtr(180)},
		{name: "no space", input: StringPtr("1h30m"), want: IntPtr(90)},
		{name: "space before unit", input: StringPtr("2 h 5 m"), want: IntPtr(125)},
		{name: "zero components still parse", input: StringPtr("0h 0m"), want: IntPtr(0)},
		{name: "empty", input: StringPtr(""), want: nil},
		{name: "whitespace", input: StringPtr("   "), want: nil},
		{name: "garbage", input: StringPtr("garbage"), want: nil},
		{name: "not available", input: StringPtr("N/A"), want: nil},
		{name: "absent", input: nil, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDuration(tc.input)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("got %d want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("got nil want %d", *tc.want)
			}
			if *got != *tc.want {
				t.Fatalf("got %d want %d", *got, *tc.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{45: "45m", 180: "3h", 130: "2h 10m"}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q want %q", in, got, want)
		}
		if back := ParseDuration(StringPtr(FormatDuration(in))); back == nil || *back != in {
			t.Errorf("round trip of %d failed: %v", in, back)
		}
	}
}
