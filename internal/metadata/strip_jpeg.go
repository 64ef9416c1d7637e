package metadata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var (
	jpegExifHeader = []byte("Exif\x00\x00")
	jpegXmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	jpegPhotoshop  = []byte("Photoshop 3.0\x00")
	jpegICCHeader  = []byte("ICC_PROFILE\x00")
)

// stripJPEG copies a JPEG stream from r to w dropping every
// metadata-bearing segment (EXIF, XMP, IPTC) without re-encoding any
// image data. The ICC color profile is kept unless preserveICC is
// false, since it describes color, not provenance.
func stripJPEG(r io.Reader, w io.Writer, preserveICC bool) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return fmt.Errorf("invalid JPEG SOI")
	}
	if _, err := bw.Write(soi); err != nil {
		return err
	}

	for {
		markerPrefix, err := br.ReadByte()
		if err != nil {
			return err
		}
		for markerPrefix != 0xff {
			markerPrefix, err = br.ReadByte()
			if err != nil {
				return err
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return err
		}
		for marker == 0xff {
			marker, err = br.ReadByte()
			if err != nil {
				return err
			}
		}

		if marker == 0xd9 { // EOI
			if _, err := bw.Write([]byte{0xff, 0xd9}); err != nil {
				return err
			}
			break
		}

		if marker == 0xda { // SOS: entropy-coded data follows, copy through
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			if _, err := io.Copy(bw, br); err != nil {
				return err
			}
			break
		}

		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return fmt.Errorf("invalid JPEG segment length")
		}
		payloadLen := segLen - 2
		if marker == 0xe1 || marker == 0xe2 || marker == 0xed {
			payload := make([]byte, payloadLen)
			if _, err := io.ReadFull(br, payload); err != nil {
				return err
			}

			if shouldDropJPEGSegment(marker, payload, preserveICC) {
				continue
			}

			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			if _, err := bw.Write(lenBuf); err != nil {
				return err
			}
			if _, err := bw.Write(payload); err != nil {
				return err
			}
			continue
		}

		if _, err := bw.Write([]byte{0xff, marker}); err != nil {
			return err
		}
		if _, err := bw.Write(lenBuf); err != nil {
			return err
		}
		if _, err := io.CopyN(bw, br, int64(payloadLen)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func shouldDropJPEGSegment(marker byte, payload []byte, preserveICC bool) bool {
	switch marker {
	case 0xe1:
		if bytes.HasPrefix(payload, jpegExifHeader) || bytes.HasPrefix(payload, jpegXmpHeader) {
			return true
		}
	case 0xed:
		if bytes.HasPrefix(payload, jpegPhotoshop) {
			return true
		}
	case 0xe2:
		if !preserveICC && bytes.HasPrefix(payload, jpegICCHeader) {
			return true
		}
	}

	return false
}

// readICCSegments collects the raw APP2 ICC profile segments of a JPEG
// file, marker and length bytes included, in stream order. A profile
// spanning several chunks keeps its chunk sequence intact.
func readICCSegments(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return nil, err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return nil, fmt.Errorf("invalid JPEG SOI")
	}

	var segments [][]byte
	for {
		prefix, err := br.ReadByte()
		if err != nil {
			return segments, nil
		}
		for prefix != 0xff {
			prefix, err = br.ReadByte()
			if err != nil {
				return segments, nil
			}
		}
		marker, err := br.ReadByte()
		if err != nil {
			return segments, nil
		}
		for marker == 0xff {
			marker, err = br.ReadByte()
			if err != nil {
				return segments, nil
			}
		}

		if marker == 0xd9 || marker == 0xda {
			return segments, nil
		}
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return segments, nil
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return segments, nil
		}
		payload := make([]byte, segLen-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return segments, nil
		}

		if marker == 0xe2 && bytes.HasPrefix(payload, jpegICCHeader) {
			seg := make([]byte, 0, 4+len(payload))
			seg = append(seg, 0xff, marker)
			seg = append(seg, lenBuf...)
			seg = append(seg, payload...)
			segments = append(segments, seg)
		}
	}
}

// spliceICCSegments inserts previously captured APP2 segments into an
// encoded JPEG, right after the SOI marker (and APP0, when present).
func spliceICCSegments(encoded []byte, segments [][]byte) []byte {
	if len(segments) == 0 || len(encoded) < 2 || encoded[0] != 0xff || encoded[1] != 0xd8 {
		return encoded
	}

	insertAt := 2
	if len(encoded) >= 6 && encoded[2] == 0xff && encoded[3] == 0xe0 {
		appLen := int(binary.BigEndian.Uint16(encoded[4:6]))
		if 4+appLen <= len(encoded) {
			insertAt = 4 + appLen
		}
	}

	out := make([]byte, 0, len(encoded)+totalLen(segments))
	out = append(out, encoded[:insertAt]...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	out = append(out, encoded[insertAt:]...)
	return out
}

func totalLen(segments [][]byte) int {
	n := 0
	for _, seg := range segments {
		n += len(seg)
	}
	return n
}
