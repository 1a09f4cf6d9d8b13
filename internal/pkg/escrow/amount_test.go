package escrow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "10.00", want: 10_000_000},
		{in: "10", want: 10_000_000},
		{in: "0.000001", want: 1},
		{in: "12.3456789", want: 12_345_678},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMicroRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("25.50")
	micro := ToMicro(d)
	if micro != 25_500_000 {
		t.Fatalf("ToMicro = %d, want 25500000", micro)
	}
	if !FromMicro(micro).Equal(d) {
		t.Fatalf("FromMicro(%d) = %s, want %s", micro, FromMicro(micro), d)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(12_000_000); got != "12.00" {
		t.Fatalf("FormatAmount = %q, want \"12.00\"", got)
	}
	if got := FormatAmount(1); got != "0.00" {
		t.Fatalf("FormatAmount truncates sub-cent dust for display, got %q", got)
	}
}
