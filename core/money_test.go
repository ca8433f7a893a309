package core

import "testing"

func TestParseValor(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantCents int64
		wantErr   error
	}{
		{name: "empty", in: "", wantErr: ErrInvalidValor},
		{name: "blank", in: "   ", wantErr: ErrInvalidValor},
		{name: "not a number", in: "lol", wantErr: ErrInvalidValor},
		{name: "negative", in: "-12.34", wantErr: ErrInvalidValor},
		{name: "explicit plus", in: "+12.34", wantErr: ErrInvalidValor},
		{name: "zero", in: "0", wantErr: ErrInvalidValor},
		{name: "zero with decimals", in: "0.00", wantErr: ErrInvalidValor},
		{name: "two separators", in: "1.2.3", wantErr: ErrInvalidValor},
		{name: "mixed garbage", in: "12a.34", wantErr: ErrInvalidValor},
		{name: "integer", in: "50", wantCents: 5000},
		{name: "dot separator", in: "12.34", wantCents: 1234},
		{name: "comma separator", in: "12,34", wantCents: 1234},
		{name: "single decimal", in: "12.3", wantCents: 1230},
		{name: "no integer part", in: ".50", wantCents: 50},
		{name: "rounds half up", in: "1.005", wantCents: 101},
		{name: "rounds down", in: "1.004", wantCents: 100},
		{name: "extra decimals ignored after rounding", in: "1.0059", wantCents: 101},
		{name: "surrounding spaces", in: "  70,00  ", wantCents: 7000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseValor(tt.in)
			if err != tt.wantErr {
				t.Fatalf("ParseValor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if m.Cents != tt.wantCents {
				t.Errorf("ParseValor(%q) = %d cents, want %d", tt.in, m.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{5000, "50.00"},
		{1234, "12.34"},
		{-1234, "-12.34"},
		{123456789, "1234567.89"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %s, want %s", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_Reais(t *testing.T) {
	if got := (Money{Cents: 1234}).Reais(); got != 12.34 {
		t.Errorf("Money{1234}.Reais() = %v, want 12.34", got)
	}
}
