package num

import (
	"math"
	"testing"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
		errKind ParseErrKind
	}{
		{name: "decimal", input: "7.5", want: 7.5},
		{name: "padded", input: "  0.25\t", want: 0.25},
		{name: "exponent", input: "1e-05", want: 1e-05},
		{name: "signed", input: "-3", want: -3},
		{name: "leading dot", input: ".5", want: 0.5},
		{name: "trailing dot", input: "5.", want: 5},
		{name: "empty", input: "  ", wantErr: true, errKind: ParseEmpty},
		{name: "bad char", input: "1.2x", wantErr: true, errKind: ParseBadChar},
		{name: "dangling exponent", input: "1e", wantErr: true, errKind: ParseBadChar},
		{name: "word", input: "mean", wantErr: true, errKind: ParseNoDigits},
		{name: "digit separator", input: "1_0", wantErr: true, errKind: ParseBadChar},
		{name: "hex", input: "0x1A", wantErr: true, errKind: ParseBadChar},
		{name: "hex float", input: "0x1p3", wantErr: true, errKind: ParseBadChar},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFloat(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				perr, ok := err.(*ParseError)
				if !ok {
					t.Fatalf("error type = %T, want *ParseError", err)
				}
				if perr.Kind != tc.errKind {
					t.Fatalf("error kind = %v, want %v", perr.Kind, tc.errKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseFloat(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseFloatSpecial(t *testing.T) {
	for _, in := range []string{"inf", "INF", "+Infinity"} {
		v, err := ParseFloat(in)
		if err != nil || !math.IsInf(v, 1) {
			t.Fatalf("ParseFloat(%q) = %v, %v; want +Inf", in, v, err)
		}
	}
	v, err := ParseFloat("-inf")
	if err != nil || !math.IsInf(v, -1) {
		t.Fatalf("ParseFloat(-inf) = %v, %v; want -Inf", v, err)
	}
	v, err = ParseFloat("NaN")
	if err != nil || !math.IsNaN(v) {
		t.Fatalf("ParseFloat(NaN) = %v, %v; want NaN", v, err)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7.5, "7.5"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{0.0001, "0.0001"},
		{1e-05, "1e-05"},
		{2.5e-07, "2.5e-07"},
		{1e15, "1000000000000000.0"},
		{1.5e16, "1.5e+16"},
		{0.1, "0.1"},
		{123.456, "123.456"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}

	for _, tc := range tests {
		if got := FormatFloat(tc.in); got != tc.want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatFloatRoundTrip(t *testing.T) {
	for _, v := range []float64{7.5, 0.1 + 0.2, 1e-9, 6.000000000000001, 12345678.9} {
		got, err := ParseFloat(FormatFloat(v))
		if err != nil {
			t.Fatalf("ParseFloat(FormatFloat(%v)): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %v -> %q -> %v", v, FormatFloat(v), got)
		}
	}
}
