// Package storage keeps the ID-card images uploaded with student
// registrations, on local disk or in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
)

const (
	// PublicPrefix starts every stored image path, e.g. /uploads/1700-<uuid>.png.
	PublicPrefix = "/uploads/"

	MsgBadType  = "Chỉ cho phép upload hình ảnh (jpeg, jpg, png, gif, webp)"
	MsgTooLarge = "Ảnh vượt quá dung lượng cho phép (50MB)"
)

var allowedTypes = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Object is a stored image as seen by the sweeper.
type Object struct {
	Path    string
	ModTime time.Time
}

type ImageStore interface {
	// Save stores an already validated upload and returns its public path.
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	// Remove deletes the image at a public path. A missing image is not an
	// error.
	Remove(ctx context.Context, publicPath string) error
	List(ctx context.Context) ([]Object, error)
}

// ValidateImage accepts an upload only when both its extension and its
// declared content type name an allowed image format and it fits maxBytes.
func ValidateImage(fh *multipart.FileHeader, maxBytes int64) error {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fh.Filename)), ".")
	if !allowedTypes[ext] {
		return apperr.Upload(MsgBadType)
	}

	ct := strings.ToLower(fh.Header.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	sub, ok := strings.CutPrefix(strings.TrimSpace(ct), "image/")
	if !ok || !allowedTypes[sub] {
		return apperr.Upload(MsgBadType)
	}

	if maxBytes > 0 && fh.Size > maxBytes {
		return apperr.Upload(MsgTooLarge)
	}
	return nil
}

// NewName returns a collision-free file name keeping the upload's extension.
func NewName(original string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixNano(), uuid.NewString(), strings.ToLower(path.Ext(original)))
}

// nameOf extracts the bare file name from a public path, rejecting anything
// that is not a direct child of PublicPrefix.
func nameOf(publicPath string) (string, bool) {
	name, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

// RemoveAll removes every path, returning the first failure. It keeps going
// after an error.
func RemoveAll(ctx context.Context, store ImageStore, paths ...string) error {
	var first error
	for _, p := range paths {
		if err := store.Remove(ctx, p); err != nil && first == nil {
			first = err
		}
	}
	return first
}
