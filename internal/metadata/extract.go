package metadata

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	goexif "github.com/rwcarlsen/goexif/exif"
	goexiftiff "github.com/rwcarlsen/goexif/tiff"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/tiff"

	"rinse/internal/security"
	"rinse/pkg/imgutil"
)

// Extractor reads structured metadata from a validated image file. The
// primary decoder produces the full IFD-grouped tag set; when it fails
// outright, a secondary decoder recovers a basic flat tag list. The
// decode hooks are swappable for tests.
type Extractor struct {
	validator *security.Validator
	log       zerolog.Logger

	loadPrimary  func(path string) ([]exif.ExifTag, error)
	loadFallback func(path string) ([]Tag, error)
	fileInfo     func(path string) (*Section, error)
}

func NewExtractor(validator *security.Validator, log zerolog.Logger) *Extractor {
	return &Extractor{
		validator:    validator,
		log:          log,
		loadPrimary:  loadStructuredTags,
		loadFallback: loadBasicTags,
		fileInfo:     fileInfoSection,
	}
}

// Extract validates the file, decodes its metadata, and returns a
// display-ready document. It never fails past this boundary: any
// low-level fault becomes the document's Error field.
func (e *Extractor) Extract(path string) (doc *Document) {
	// The EXIF libraries panic on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("path", path).Interface("panic", r).Msg("metadata extraction panicked")
			doc = errorDocument(fmt.Sprintf("Failed to extract metadata: %v", r))
		}
	}()

	if verr := e.validator.ValidateInput(path); verr != nil {
		e.log.Warn().Str("path", path).Str("kind", string(verr.Kind)).Msg("input rejected")
		return errorDocument(verr.Message)
	}

	grouped := make(map[string][]Tag)

	tags, err := e.loadPrimary(path)
	switch {
	case err == nil:
		for _, t := range tags {
			value := FormatValue(t.Value)
			if value == "" {
				continue
			}
			label := sectionForIfd(t.IfdPath)
			grouped[label] = append(grouped[label], Tag{Name: t.TagName, Value: value})
		}
	case isNoExif(err):
		// Nothing embedded; the file-info section below still applies.
	default:
		e.log.Debug().Err(err).Str("path", path).Msg("primary decoder failed, trying fallback")
		basic, ferr := e.loadFallback(path)
		if ferr != nil {
			e.log.Error().Err(err).AnErr("fallback", ferr).Str("path", path).Msg("both metadata decoders failed")
			return errorDocument(fmt.Sprintf("Failed to extract metadata: %v", err))
		}
		grouped[SectionFallback] = basic
	}

	var fileInfo *Section
	if sec, ferr := e.fileInfo(path); ferr == nil {
		fileInfo = sec
	} else {
		// Non-fatal: the section is simply omitted.
		e.log.Debug().Err(ferr).Str("path", path).Msg("file info unavailable")
	}

	doc = &Document{}
	for _, label := range sectionOrder {
		if label == SectionFileInfo {
			if fileInfo != nil {
				doc.Sections = append(doc.Sections, *fileInfo)
			}
			continue
		}
		if entries := grouped[label]; len(entries) > 0 {
			doc.Sections = append(doc.Sections, Section{Label: label, Tags: entries})
		}
	}

	if len(doc.Sections) == 0 {
		return &Document{Info: "No metadata found"}
	}
	return doc
}

// sectionForIfd maps a decoder IFD path to a display section. Paths
// arrive both indexed ("IFD1") and unindexed ("IFD/GPSInfo"), so the
// match is on distinguishing fragments, most specific first.
func sectionForIfd(ifdPath string) string {
	switch {
	case strings.Contains(ifdPath, "Iop"):
		return SectionInterop
	case strings.Contains(ifdPath, "GPS"):
		return SectionGPS
	case strings.Contains(ifdPath, "Exif"):
		return SectionEXIFDetails
	case strings.HasPrefix(ifdPath, "IFD1"):
		return SectionThumbnail
	default:
		return SectionEXIF
	}
}

func loadStructuredTags(path string) ([]exif.ExifTag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(f, nil, true)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// loadBasicTags is the secondary decode path: a flat walk with no
// IFD grouping, used only when the primary decoder fails outright.
func loadBasicTags(path string) ([]Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return nil, err
	}

	collector := &tagCollector{}
	if err := x.Walk(collector); err != nil {
		return nil, err
	}
	return collector.tags, nil
}

type tagCollector struct {
	tags []Tag
}

func (c *tagCollector) Walk(name goexif.FieldName, tag *goexiftiff.Tag) error {
	value := tag.String()
	// String values arrive wrapped in quotes.
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	value = FormatValue(value)
	if value != "" {
		c.tags = append(c.tags, Tag{Name: string(name), Value: value})
	}
	return nil
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

func fileInfoSection(path string) (*Section, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}

	sec := &Section{
		Label: SectionFileInfo,
		Tags: []Tag{
			{Name: "File Name", Value: filepath.Base(path)},
			{Name: "File Size", Value: humanSize(info.Size())},
			{Name: "Image Size", Value: fmt.Sprintf("%d x %d pixels", cfg.Width, cfg.Height)},
			{Name: "Format", Value: strings.ToUpper(format)},
		},
	}
	if mode := imgutil.ColorMode(cfg.ColorModel); mode != "" {
		sec.Tags = append(sec.Tags, Tag{Name: "Color Mode", Value: mode})
	}
	return sec, nil
}

func humanSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
