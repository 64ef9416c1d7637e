// Package metadata extracts organized EXIF/GPS metadata from validated
// JPEG/TIFF files and produces clean copies with that metadata removed.
package metadata

// Canonical section labels, in display order.
const (
	SectionEXIF        = "EXIF"
	SectionEXIFDetails = "EXIF Details"
	SectionGPS         = "GPS Location"
	SectionThumbnail   = "Thumbnail"
	SectionInterop     = "Interoperability"
	SectionFallback    = "EXIF (fallback)"
	SectionFileInfo    = "File Info"
)

var sectionOrder = []string{
	SectionEXIF,
	SectionEXIFDetails,
	SectionGPS,
	SectionThumbnail,
	SectionInterop,
	SectionFallback,
	SectionFileInfo,
}

// Tag is a single display-ready metadata entry. Value is already
// sanitized: no NUL bytes, no raw binary.
type Tag struct {
	Name  string
	Value string
}

// Section is an ordered group of tags under one label.
type Section struct {
	Label string
	Tags  []Tag
}

// Document is the result of one extraction. Exactly one of three shapes
// holds: Sections populated, Error set (extraction failed entirely), or
// Info set (extraction succeeded but found nothing). Error never mixes
// with section data.
type Document struct {
	Sections []Section
	Error    string
	Info     string
}

// Section returns the section with the given label, or nil.
func (d *Document) Section(label string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Label == label {
			return &d.Sections[i]
		}
	}
	return nil
}

// TagCount is the total number of tags across all sections.
func (d *Document) TagCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Tags)
	}
	return n
}

func errorDocument(message string) *Document {
	return &Document{Error: message}
}
