package layout

import "testing"

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#FFFFFF":   White,
		"#fff":      White,
		"#00000080": {A: 0x80},
		"#1A2B3C":   {R: 0x1a, G: 0x2b, B: 0x3c, A: 255},
		" black ":   Black,
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
	for _, bad := range []string{"", "FFFFFF", "#12", "#GGGGGG", "chartreuse-ish"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) 应失败", bad)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := MustColor("#abcdef").Hex(); got != "#ABCDEF" {
		t.Fatalf("Hex = %s", got)
	}
	if got := (Color{R: 1, G: 2, B: 3, A: 4}).Hex(); got != "#01020304" {
		t.Fatalf("Hex = %s", got)
	}
}

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{7, 2, 3},
		{-7, 2, -4},
		{-3, 2, -2},
		{-4, 2, -2},
		{0, 2, 0},
		{7, -2, -4},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Fatalf("floorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
