// Package media stores uploaded videos and thumbnails on the external media host.
package media

import (
	"context"
	"errors"
	"io"
)

// File is an uploaded body that can be streamed and also probed in place.
// multipart.File satisfies it.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

type Kind string

const (
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"
)

type Object struct {
	Kind        Kind
	OwnerID     uint64
	Filename    string
	ContentType string
	Size        int64
	Body        File
}

// Uploaded describes a stored object. DurationSeconds is measured by the host
// for videos and zero for images.
type Uploaded struct {
	PublicID        string
	URL             string
	DurationSeconds float64
}

type Host interface {
	Upload(ctx context.Context, obj Object) (*Uploaded, error)
	Delete(ctx context.Context, publicID string) error
}

var ErrNoDuration = errors.New("media: no movie header found")
