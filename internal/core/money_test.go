package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: "12.345", want: 1235}, // half-up at the third decimal
		{in: "12.346", want: 1235},
		{in: "-50", want: -5000},
		{in: "-0.01", want: -1},
		{in: "+7", want: 700},
		{in: "0", want: 0},
		{in: ".5", want: 50},
		{in: "", wantErr: true},
		{in: "12.34.56", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "12a", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMoneyMaterial(t *testing.T) {
	if (Money{Cents: 1}).Material() {
		t.Error("1 cent should not be material")
	}
	if (Money{Cents: -1}).Material() {
		t.Error("-1 cent should not be material")
	}
	if !(Money{Cents: 2}).Material() || !(Money{Cents: -2}).Material() {
		t.Error("2 cents should be material")
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{Money{Cents: 1234}, "12.34"},
		{Money{Cents: -1234}, "-12.34"},
		{Money{Cents: 5}, "0.05"},
		{Money{Cents: 0}, "0.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%d cents: got %q, want %q", tt.in.Cents, got, tt.want)
		}
	}
}
