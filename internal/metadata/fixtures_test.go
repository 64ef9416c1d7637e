package metadata

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"golang.org/x/image/tiff"
)

// writeJPEG writes a small, fully decodable JPEG with no metadata.
func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func writeTIFF(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode tiff: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// writeJPEGWithExif writes a decodable JPEG carrying camera, capture,
// and GPS tags across the root, Exif, and GPSInfo IFDs.
func writeJPEGWithExif(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var raw bytes.Buffer
	if err := jpeg.Encode(&raw, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(raw.Bytes())
	if err != nil {
		t.Fatalf("parse jpeg: %v", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		t.Fatalf("ifd mapping: %v", err)
	}
	ti := exif.NewTagIndex()
	rootIb := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	addTag := func(ib *exif.IfdBuilder, name string, value any) {
		t.Helper()
		if err := ib.AddStandardWithName(name, value); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	addTag(rootIb, "Make", "TestCam")
	addTag(rootIb, "Model", "Model X")

	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
	if err != nil {
		t.Fatalf("exif ifd: %v", err)
	}
	addTag(exifIb, "DateTimeOriginal", "2024:01:02 03:04:05")
	addTag(exifIb, "ExposureTime", []exifcommon.Rational{{Numerator: 1, Denominator: 250}})

	gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/GPSInfo")
	if err != nil {
		t.Fatalf("gps ifd: %v", err)
	}
	addTag(gpsIb, "GPSLatitudeRef", "N")
	addTag(gpsIb, "GPSLatitude", []exifcommon.Rational{
		{Numerator: 40, Denominator: 1},
		{Numerator: 26, Denominator: 1},
		{Numerator: 46, Denominator: 1},
	})
	addTag(gpsIb, "GPSLongitudeRef", "W")
	addTag(gpsIb, "GPSLongitude", []exifcommon.Rational{
		{Numerator: 79, Denominator: 1},
		{Numerator: 58, Denominator: 1},
		{Numerator: 56, Denominator: 1},
	})

	if err := sl.SetExif(rootIb); err != nil {
		t.Fatalf("set exif: %v", err)
	}

	var out bytes.Buffer
	if err := sl.Write(&out); err != nil {
		t.Fatalf("write segments: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
