// Package mediatest provides an in-memory media host for tests.
package mediatest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/reelspay/reelspay-backend/internal/media"
)

// Host stores objects in memory and measures durations with media.ProbeDuration.
type Host struct {
	mu        sync.Mutex
	seq       int
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
}

func NewHost() *Host {
	return &Host{Objects: map[string][]byte{}}
}

func (h *Host) Upload(_ context.Context, obj media.Object) (*media.Uploaded, error) {
	if h.UploadErr != nil {
		return nil, h.UploadErr
	}
	if _, err := obj.Body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.seq++
	id := fmt.Sprintf("%s/%d/%d", obj.Kind, obj.OwnerID, h.seq)
	h.Objects[id] = data
	h.mu.Unlock()

	out := &media.Uploaded{PublicID: id, URL: "https://media.test/" + id}
	if obj.Kind == media.KindVideo {
		secs, err := media.ProbeDuration(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return out, err
		}
		out.DurationSeconds = secs
	}
	return out, nil
}

func (h *Host) Delete(_ context.Context, publicID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Objects[publicID]; !ok {
		return errors.New("object not found")
	}
	delete(h.Objects, publicID)
	h.Deleted = append(h.Deleted, publicID)
	return nil
}

func (h *Host) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Objects)
}

// MP4 returns a minimal mp4 file whose movie header reports secs seconds.
func MP4(secs uint32) []byte {
	mvhd := make([]byte, 100)
	binary.BigEndian.PutUint32(mvhd[12:16], 1000)
	binary.BigEndian.PutUint32(mvhd[16:20], secs*1000)
	ftyp := append([]byte("isom\x00\x00\x02\x00"), []byte("isomiso2avc1mp41")...)
	return append(box("ftyp", ftyp), box("moov", box("mvhd", mvhd))...)
}

func box(typ string, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(8+len(payload)))
	copy(out[4:8], typ)
	return append(out, payload...)
}

// PNG is a tiny valid-looking PNG header for thumbnail uploads.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
