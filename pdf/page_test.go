package pdf

import "testing"

func TestParseFormat(t *testing.T) {
	cases := []struct {
		input     string
		width     float64
		height    float64
		landscape bool
		wantErr   bool
	}{
		{input: "A4", width: 210, height: 297},
		{input: "a4-l", width: 210, height: 297, landscape: true},
		{input: "Letter-P", width: 215.9, height: 279.4},
		{input: "", width: 210, height: 297},
		{input: "100x150", width: 100, height: 150},
		{input: "A4-X", wantErr: true},
		{input: "Postcard", wantErr: true},
	}

	for _, tc := range cases {
		size, err := ParseFormat(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFormat(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tc.input, err)
		}
		if size.Width != tc.width || size.Height != tc.height || size.Landscape != tc.landscape {
			t.Fatalf("ParseFormat(%q): got %+v", tc.input, size)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "10mm", want: 10},
		{input: "1cm", want: 10},
		{input: "1in", want: 25.4},
		{input: "72pt", want: 25.4},
		{input: "96px", want: 25.4},
		{input: "5", want: 5},
		{input: " 2.5 mm ", want: 2.5},
	}

	for _, tc := range tests {
		got, err := ParseLength(tc.input)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", tc.input, err)
		}
		if diff := got - tc.want; diff > 0.0001 || diff < -0.0001 {
			t.Fatalf("ParseLength(%q): expected %f, got %f", tc.input, tc.want, got)
		}
	}

	for _, input := range []string{"", "abc", "5em", "-1mm"} {
		if _, err := ParseLength(input); err == nil {
			t.Fatalf("ParseLength(%q): expected error", input)
		}
	}
}

func TestMillimetresToInches(t *testing.T) {
	if got := MillimetresToInches(25.4); got != 1 {
		t.Fatalf("expected 1 inch, got %v", got)
	}
}
