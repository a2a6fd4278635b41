package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCSHost keeps media in a Cloud Storage bucket and serves it through Firebase
// download tokens.
type GCSHost struct {
	client  *storage.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

func NewGCSHost(ctx context.Context, bucket, credentialsFile, baseURL string, timeout time.Duration) (*GCSHost, error) {
	if bucket == "" {
		return nil, errors.New("media bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &GCSHost{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}, nil
}

func (h *GCSHost) Close() error {
	return h.client.Close()
}

func objectPath(obj Object) string {
	ext := strings.ToLower(path.Ext(obj.Filename))
	if ext == "" || len(ext) > 6 {
		ext = ""
	}
	return fmt.Sprintf("%s/%d/%s%s", obj.Kind, obj.OwnerID, uuid.NewString(), ext)
}

func (h *GCSHost) Upload(ctx context.Context, obj Object) (*Uploaded, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if _, err := obj.Body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	name := objectPath(obj)
	token := uuid.NewString()
	w := h.client.Bucket(h.bucket).Object(name).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	out := &Uploaded{
		PublicID: name,
		URL: fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
			h.baseURL, h.bucket, url.PathEscape(name), token),
	}
	if obj.Kind == KindVideo {
		secs, err := ProbeDuration(obj.Body, obj.Size)
		if err != nil {
			// the object exists now; the caller owns cleanup through Delete
			return out, err
		}
		out.DurationSeconds = secs
	}
	return out, nil
}

func (h *GCSHost) Delete(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	err := h.client.Bucket(h.bucket).Object(publicID).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
