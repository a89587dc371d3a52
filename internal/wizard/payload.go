package wizard

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"fasplanners/pkg/eventapi"
)

// BuildPayload serialises d into a submission body. Images are encoded
// concurrently and keep their order. Every menu section is present, empty
// ones as empty lists.
func BuildPayload(ctx context.Context, d Draft) (*eventapi.SubmitRequest, error) {
	p := &eventapi.SubmitRequest{
		Name:          strings.TrimSpace(d.Name),
		Email:         strings.TrimSpace(d.Email),
		Phone:         text(d.Phone),
		Message:       text(d.Message),
		EventCategory: text(d.EventCategory),
		EventType:     text(d.EventType),
		EventDate:     text(d.EventDate),
		Venue:         text(d.Venue),
		BudgetRange:   text(d.BudgetRange),
		MenuCategory:  text(d.MenuCategory),
		MenuSections:  eventapi.MenuSections(d.MenuSections).Complete(),
		DecorTheme:    text(d.DecorTheme),
		DecorVision:   text(d.DecorVision),
	}
	if d.GuestCount > 0 {
		guests := d.GuestCount
		p.GuestCount = &guests
	}
	for _, c := range d.DecorColors {
		if c = strings.TrimSpace(c); c != "" {
			p.DecorColors = append(p.DecorColors, c)
		}
	}

	images, err := encodeImages(ctx, d.Images)
	if err != nil {
		return nil, err
	}
	p.InspirationImages = images
	return p, nil
}

func encodeImages(ctx context.Context, images []Image) ([]eventapi.InspirationImage, error) {
	if len(images) == 0 {
		return nil, nil
	}

	encoded := make([]eventapi.InspirationImage, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := encodeImage(img)
			if err != nil {
				return err
			}
			encoded[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}

// encodeImage turns a local image into a base64 data URL. A blank type is
// sniffed from the content.
func encodeImage(img Image) (eventapi.InspirationImage, error) {
	data := img.Data
	if len(data) == 0 && img.Path != "" {
		raw, err := os.ReadFile(img.Path)
		if err != nil {
			return eventapi.InspirationImage{}, fmt.Errorf("read image %s: %w", img.Path, err)
		}
		data = raw
	}
	if len(data) == 0 {
		return eventapi.InspirationImage{}, fmt.Errorf("image %q is empty", img.Name)
	}

	name := img.Name
	if name == "" && img.Path != "" {
		name = filepath.Base(img.Path)
	}
	mediaType := img.Type
	if mediaType == "" {
		mediaType = mimetype.Detect(data).String()
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return eventapi.InspirationImage{}, fmt.Errorf("%s is not an image (%s)", name, mediaType)
	}

	return eventapi.InspirationImage{
		Name: name,
		Type: mediaType,
		Data: "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

func text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
