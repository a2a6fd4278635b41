package media

import (
	"encoding/binary"
	"fmt"
	"io"
)

const maxBoxDepth = 4

// ProbeDuration reads the presentation duration in seconds from the mvhd box of
// an ISO base media file (mp4, mov).
func ProbeDuration(r io.ReaderAt, size int64) (float64, error) {
	return findMvhd(r, 0, size, 0)
}

func findMvhd(r io.ReaderAt, start, end int64, depth int) (float64, error) {
	if depth > maxBoxDepth {
		return 0, ErrNoDuration
	}
	hdr := make([]byte, 16)
	for off := start; off+8 <= end; {
		if _, err := r.ReadAt(hdr[:8], off); err != nil {
			return 0, fmt.Errorf("media: read box header: %w", err)
		}
		boxSize := int64(binary.BigEndian.Uint32(hdr[0:4]))
		boxType := string(hdr[4:8])
		headerLen := int64(8)
		switch boxSize {
		case 0:
			boxSize = end - off
		case 1:
			if _, err := r.ReadAt(hdr[8:16], off+8); err != nil {
				return 0, fmt.Errorf("media: read large box size: %w", err)
			}
			boxSize = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if boxSize < headerLen || off+boxSize > end {
			return 0, fmt.Errorf("media: malformed %q box at %d", boxType, off)
		}
		switch boxType {
		case "moov":
			return findMvhd(r, off+headerLen, off+boxSize, depth+1)
		case "mvhd":
			return readMvhd(r, off+headerLen, boxSize-headerLen)
		}
		off += boxSize
	}
	return 0, ErrNoDuration
}

func readMvhd(r io.ReaderAt, off, n int64) (float64, error) {
	// version(1) flags(3), then v0: ctime(4) mtime(4) timescale(4) duration(4)
	// or v1: ctime(8) mtime(8) timescale(4) duration(8)
	if n < 20 {
		return 0, ErrNoDuration
	}
	buf := make([]byte, 32)
	if n < 32 {
		buf = buf[:n]
	}
	if _, err := r.ReadAt(buf, off); err != nil && err != io.EOF {
		return 0, fmt.Errorf("media: read mvhd: %w", err)
	}
	var timescale uint32
	var duration uint64
	switch buf[0] {
	case 0:
		timescale = binary.BigEndian.Uint32(buf[12:16])
		duration = uint64(binary.BigEndian.Uint32(buf[16:20]))
	case 1:
		if len(buf) < 32 {
			return 0, ErrNoDuration
		}
		timescale = binary.BigEndian.Uint32(buf[20:24])
		duration = binary.BigEndian.Uint64(buf[24:32])
	default:
		return 0, fmt.Errorf("media: unknown mvhd version %d", buf[0])
	}
	if timescale == 0 {
		return 0, ErrNoDuration
	}
	return float64(duration) / float64(timescale), nil
}
