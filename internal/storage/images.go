// Package storage keeps the inspiration images attached to event requests.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"fasplanners/internal/metrics"
	"fasplanners/pkg/eventapi"
	apperrors "fasplanners/pkg/errors"
)

// ImageStore turns a submitted image into the reference that is persisted.
// Delete removes what Put stored for a reference that ends up unused.
type ImageStore interface {
	Put(ctx context.Context, img eventapi.InspirationImage) (eventapi.InspirationImage, error)
	Delete(ctx context.Context, ref eventapi.InspirationImage) error
}

// DataURL is a decoded base64 data URL
type DataURL struct {
	MediaType string
	Data      []byte
}

// ParseDataURL decodes data:<type>[;param]*;base64,<payload>
func ParseDataURL(s string) (*DataURL, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload")
	}
	params := strings.Split(header, ";")
	if len(params) < 2 || params[len(params)-1] != "base64" {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return &DataURL{MediaType: strings.ToLower(params[0]), Data: data}, nil
}

// decodeImage validates a submitted image and returns its decoded bytes
func decodeImage(img eventapi.InspirationImage, maxBytes int) (*DataURL, error) {
	if img.Data == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("image %q has no data", img.Name))
	}
	du, err := ParseDataURL(img.Data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeValidation, fmt.Sprintf("image %q is not a valid data URL", img.Name), err)
	}
	if !strings.HasPrefix(du.MediaType, "image/") {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("image %q must be an image, got %s", img.Name, du.MediaType))
	}
	if maxBytes > 0 && len(du.Data) > maxBytes {
		return nil, apperrors.New(apperrors.ErrCodeValidation, fmt.Sprintf("image %q exceeds the %s limit", img.Name, humanize.IBytes(uint64(maxBytes))))
	}
	return du, nil
}

// InlineStore keeps the data URL in the record itself
type InlineStore struct {
	maxBytes int
}

// NewInlineStore creates an InlineStore rejecting images larger than maxBytes
func NewInlineStore(maxBytes int) *InlineStore {
	return &InlineStore{maxBytes: maxBytes}
}

// Put validates img and returns it unchanged apart from a filled type
func (s *InlineStore) Put(ctx context.Context, img eventapi.InspirationImage) (eventapi.InspirationImage, error) {
	du, err := decodeImage(img, s.maxBytes)
	if err != nil {
		return eventapi.InspirationImage{}, err
	}
	if img.Type == "" {
		img.Type = du.MediaType
	}
	metrics.RecordImageStored("inline")
	return img, nil
}

// Delete is a no-op, inline images live only in the record
func (s *InlineStore) Delete(context.Context, eventapi.InspirationImage) error {
	return nil
}
