package metadata

import (
	"testing"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"plain string", "hello", "hello"},
		{"padded string", "  hello  ", "hello"},
		{"whole rational", exifcommon.Rational{Numerator: 100, Denominator: 1}, "100"},
		{"fractional rational", exifcommon.Rational{Numerator: 1, Denominator: 100}, "0.01"},
		{"zero denominator", exifcommon.Rational{Numerator: 100, Denominator: 0}, "100"},
		{"repeating fraction", exifcommon.Rational{Numerator: 1, Denominator: 3}, "0.333333"},
		{"signed rational", exifcommon.SignedRational{Numerator: -1, Denominator: 2}, "-0.5"},
		{"nul terminated bytes", []byte("test\x00"), "test"},
		{"binary bytes", []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, "<binary data: 5 bytes>"},
		{"latin1 bytes", []byte{0xc9, 0x74, 0xe9}, "Été"},
		{"empty bytes", []byte{}, ""},
		{"uint16 slice", []uint16{1, 2, 3}, "1, 2, 3"},
		{"uint32 slice", []uint32{65536}, "65536"},
		{"int32 slice", []int32{-5, 5}, "-5, 5"},
		{"float64 slice", []float64{1.5, 2.25}, "1.5, 2.25"},
		{"string slice", []string{" a ", "", "b"}, "a, b"},
		{
			"rational slice",
			[]exifcommon.Rational{
				{Numerator: 40, Denominator: 1},
				{Numerator: 1, Denominator: 4},
			},
			"40, 0.25",
		},
		{"mixed slice", []any{"x", exifcommon.Rational{Numerator: 2, Denominator: 1}}, "x, 2"},
		{"integer", 42, "42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatValue(tc.value); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatValueIdempotent(t *testing.T) {
	inputs := []any{
		exifcommon.Rational{Numerator: 1, Denominator: 3},
		[]byte("test\x00"),
		"  padded  ",
		[]uint16{7, 8},
	}
	for _, in := range inputs {
		once := FormatValue(in)
		if twice := FormatValue(once); twice != once {
			t.Fatalf("not idempotent for %#v: %q then %q", in, once, twice)
		}
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1023, "1023 bytes"},
		{2048, "2.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tc := range cases {
		if got := humanSize(tc.n); got != tc.want {
			t.Errorf("humanSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
