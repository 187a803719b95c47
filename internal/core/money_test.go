package core

import "testing"

func TestParseDecimalToMillimes(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1000, true},
		{"1.0", 1000, true},
		{"1.23", 1230, true},
		{"1,234", 1234, true},
		{"0.001", 1, true},
		{"1.0005", 1001, true}, // half-up rounding
		{"1.0004", 1000, true},
		{" 2.500 ", 2500, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"١٢", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToMillimes(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyConversions(t *testing.T) {
	if got := (Money{Millimes: 12500}).Dinars(); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := MoneyFromDinars(12.3456).Millimes; got != 12346 {
		t.Fatalf("expected 12346, got %d", got)
	}
	if got := MoneyFromDinars(-1.5).Millimes; got != -1500 {
		t.Fatalf("expected -1500, got %d", got)
	}
	if err := (Money{Millimes: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}
