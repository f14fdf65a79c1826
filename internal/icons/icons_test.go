package icons

import (
	"bytes"
	"image/png"
	"testing"
)

func TestFlag_Existing(t *testing.T) {
	flag := Flag("us")
	if len(flag) == 0 {
		t.Fatal("Expected non-empty flag for 'us'")
	}
}

func TestFlag_CaseInsensitive(t *testing.T) {
	lower := Flag("us")
	upper := Flag("US")
	if !bytes.Equal(lower, upper) {
		t.Error("Expected identical bytes for 'us' and 'US'")
	}
}

func TestFlag_UnknownCodeFallsBack(t *testing.T) {
	flag := Flag("zz")
	if len(flag) == 0 {
		t.Fatal("Expected non-empty fallback flag for unknown code")
	}
	if !bytes.Equal(flag, Flag("xx")) {
		t.Error("Expected unknown code to fall back to the 'xx' flag")
	}
}

func TestFlag_DecodesAsPNG(t *testing.T) {
	for _, code := range []string{"us", "vn", "xx", "zz"} {
		img, err := png.Decode(bytes.NewReader(Flag(code)))
		if err != nil {
			t.Errorf("Flag(%q) is not a valid PNG: %v", code, err)
			continue
		}
		if img.Bounds().Empty() {
			t.Errorf("Flag(%q) decodes to an empty image", code)
		}
	}
}

func TestHas(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"us", true},
		{"US", true},
		{"xx", true},
		{"zz", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Has(tt.code); got != tt.expected {
			t.Errorf("Has(%q) = %v, want %v", tt.code, got, tt.expected)
		}
	}
}

func TestCount(t *testing.T) {
	if Count() <= 100 {
		t.Errorf("Expected more than 100 flags, got %d", Count())
	}
}
