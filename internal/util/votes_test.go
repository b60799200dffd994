package util

import "testing"

func TestParseVoteCount(t *testing.T) {
	cases := []struct {
		name    string
		input   *string
		want    *int64
		wantErr bool
	}{
		{name: "thousands", input: StringPtr("253K"), want: Int64Ptr(253000)},
		{name: "lowercase thousands", input: StringPtr("12k"), want: Int64Ptr(12000)},
		{name: "millions", input: StringPtr("1.2M"), want: Int64Ptr(1200000)},
		{name: "lowercase millions", input: StringPtr(" 2m "), want: Int64Ptr(2000000)},
		{name: "comma separated", input: StringPtr("5,700"), want: Int64Ptr(5700)},
		{name: "float text", input: StringPtr("5700.0"), want: Int64Ptr(5700)},
		{name: "truncates", input: StringPtr("1.9999"), want: Int64Ptr(1)},
		{name: "genuine zero", input: StringPtr("0"), want: Int64Ptr(0)},
		{name: "absent", input: nil, want: nil},
		{name: "not available", input: StringPtr("N/A"), wantErr: true},
		{name: "empty", input: StringPtr(""), wantErr: true},
		{name: "comma with suffix", input: StringPtr("1,2K"), wantErr: true},
		{name: "nan", input: StringPtr("NaN"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVoteCount(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				if got != nil {
					t.Fatalf("expected nil value on error, got %d", *got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want == nil {
				if got != nil {
					t.Fatalf("got %d want nil", *got)
				}
				return
			}
			if got == nil || *got != *tc.want {
				t.Fatalf("got %v want %d", got, *tc.want)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	got, err := ParseRating(StringPtr(" 7.5 "))
	if err != nil || got == nil || *got != 7.5 {
		t.Fatalf("got %v err %v", got, err)
	}
	for _, in := range []*string{nil, StringPtr(""), StringPtr("N/A")} {
		got, err := ParseRating(in)
		if err != nil || got != nil {
			t.Fatalf("ParseRating(%v) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRating(StringPtr("seven")); err == nil {
		t.Fatal("expected error for non-numeric rating")
	}
}

func TestFormatThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -12000: "-12,000"}
	for in, want := range cases {
		if got := FormatThousands(in); got != want {
			t.Errorf("FormatThousands(%d) = %q want %q", in, got, want)
		}
	}
}
