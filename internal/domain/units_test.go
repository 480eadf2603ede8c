package domain

import (
	"errors"
	"math"
	"testing"
)

func TestConvertWithinFamily(t *testing.T) {
	cases := []struct {
		q        float64
		from, to Unit
		want     float64
	}{
		{1.5, UnitKilogram, UnitGram, 1500},
		{250, UnitGram, UnitKilogram, 0.25},
		{2, UnitLiter, UnitMilliliter, 2000},
		{500, UnitMilliliter, UnitLiter, 0.5},
		{3, UnitPiece, UnitPiece, 3},
		{0.75, UnitKilogram, UnitKilogram, 0.75},
	}

	for _, c := range cases {
		got, err := Convert(c.q, c.from, c.to)
		if err != nil {
			t.Fatalf("Convert(%v, %v, %v): unexpected error: %v", c.q, c.from, c.to, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Convert(%v, %v, %v) = %v, want %v", c.q, c.from, c.to, got, c.want)
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	pairs := [][2]Unit{
		{UnitGram, UnitKilogram},
		{UnitKilogram, UnitGram},
		{UnitMilliliter, UnitLiter},
		{UnitLiter, UnitMilliliter},
	}
	quantities := []float64{0.001, 0.25, 1, 1.5, 999.999, 12345.678}

	for _, p := range pairs {
		for _, q := range quantities {
			there, err := Convert(q, p[0], p[1])
			if err != nil {
				t.Fatalf("Convert(%v, %v, %v): %v", q, p[0], p[1], err)
			}
			back, err := Convert(there, p[1], p[0])
			if err != nil {
				t.Fatalf("Convert(%v, %v, %v): %v", there, p[1], p[0], err)
			}
			if math.Abs(back-q) > 1e-9 {
				t.Errorf("round trip %v->%v->%v: got %v, want %v", p[0], p[1], p[0], back, q)
			}
		}
	}
}

func TestConvertCrossFamilyFails(t *testing.T) {
	mass := []Unit{UnitGram, UnitKilogram}
	volume := []Unit{UnitMilliliter, UnitLiter}

	for _, m := range mass {
		for _, v := range volume {
			if _, err := Convert(1, m, v); !errors.Is(err, ErrIncompatibleUnitFamily) {
				t.Errorf("Convert(1, %v, %v): err = %v, want ErrIncompatibleUnitFamily", m, v, err)
			}
			if _, err := Convert(1, v, m); !errors.Is(err, ErrIncompatibleUnitFamily) {
				t.Errorf("Convert(1, %v, %v): err = %v, want ErrIncompatibleUnitFamily", v, m, err)
			}
		}
	}

	for _, u := range append(mass, volume...) {
		if _, err := Convert(1, UnitPiece, u); !errors.Is(err, ErrIncompatibleUnitFamily) {
			t.Errorf("Convert(1, pcs, %v): err = %v, want ErrIncompatibleUnitFamily", u, err)
		}
	}
}

func TestParseUnit(t *testing.T) {
	for _, s := range []string{"g", "kg", "ml", "l", "pcs"} {
		if _, err := ParseUnit(s); err != nil {
			t.Errorf("ParseUnit(%q): unexpected error: %v", s, err)
		}
	}
	if _, err := ParseUnit("oz"); err == nil {
		t.Error("ParseUnit(\"oz\"): expected error, got nil")
	}
}
