package blobsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
)

const (
	ErrNoFile      = "Fayl yuklanmadi"
	ErrBadFileType = "Faqat JPEG, JPG va PNG formatlari qo'llab-quvvatlanadi"
	errBadImage    = "Rasmni o'qib bo'lmadi"

	coversPrefix = "book-covers/"
)

var (
	allowedTypes      = []string{"image/jpeg", "image/jpg", "image/png"}
	allowedExtensions = []string{".jpeg", ".jpg", ".png"}
	unsafeChars       = regexp.MustCompile(`[^a-z0-9.-]`)
	encodedTypes      = map[imaging.Format]string{imaging.JPEG: "image/jpeg", imaging.PNG: "image/png"}
)

// Covers uploads book cover images.
type Covers struct {
	store    Store
	maxWidth int
}

func NewCovers(store Store, maxWidth int) *Covers {
	return &Covers{store: store, maxWidth: maxWidth}
}

// Upload validates the image, downscales it to the max width and stores it re-encoded in the format of
// its extension. It returns the public URL.
func (c *Covers) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := strings.ToLower(filename)
	if !contains(allowedTypes, contentType) || !contains(allowedExtensions, path.Ext(name)) {
		return "", core.NewInvalid(ErrBadFileType)
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return "", core.NewInvalid(ErrBadFileType)
	}
	storedType, ok := encodedTypes[format]
	if !ok {
		return "", core.NewInvalid(ErrBadFileType)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", core.NewInvalid(errBadImage)
	}
	if c.maxWidth > 0 && img.Bounds().Dx() > c.maxWidth {
		img = imaging.Resize(img, c.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", errors.Wrap(err, "encoding cover")
	}

	key := CoverKey(core.NowFunc().UnixMilli(), name)
	return c.store.Put(ctx, key, storedType, &buf)
}

// CoverKey returns book-covers/{unixMillis}_{name} with unsafe characters of name replaced by _.
func CoverKey(unixMillis int64, filename string) string {
	safe := unsafeChars.ReplaceAllString(strings.ToLower(filename), "_")
	return fmt.Sprintf("%s%d_%s", coversPrefix, unixMillis, safe)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
