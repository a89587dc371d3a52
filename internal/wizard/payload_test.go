package wizard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasplanners/pkg/eventapi"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestBuildPayloadFillsEveryMenuSection(t *testing.T) {
	s := apply(Start(),
		SetMenuSection{Section: "appetizers", Items: []string{"Item A"}},
		SetMenuSection{Section: "grill", Items: nil},
	)

	p, err := BuildPayload(context.Background(), s.Draft)
	require.NoError(t, err)

	require.Len(t, p.MenuSections, len(eventapi.MenuSectionNames))
	assert.Equal(t, []string{"Item A"}, p.MenuSections["appetizers"])
	for _, name := range eventapi.MenuSectionNames {
		if name != "appetizers" {
			assert.Equal(t, []string{}, p.MenuSections[name], name)
		}
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	sections := body["menuSections"].(map[string]any)
	assert.Equal(t, []any{}, sections["desserts"])
	assert.Equal(t, []any{"Item A"}, sections["appetizers"])
}

func TestBuildPayloadOmitsBlankFields(t *testing.T) {
	s := completeState(t)
	s = apply(s,
		SetText{Field: FieldVenue, Value: "   "},
		SetText{Field: FieldMessage, Value: ""},
		SetDecorColors{Colors: []string{" gold ", "", "ivory"}},
	)

	p, err := BuildPayload(context.Background(), s.Draft)
	require.NoError(t, err)

	assert.Equal(t, "Amina", p.Name)
	assert.Nil(t, p.Venue)
	assert.Nil(t, p.Message)
	require.NotNil(t, p.EventDate)
	assert.Equal(t, "2026-12-12", *p.EventDate)
	require.NotNil(t, p.GuestCount)
	assert.Equal(t, 200, *p.GuestCount)
	assert.Equal(t, []string{"gold", "ivory"}, p.DecorColors)
	assert.Nil(t, p.InspirationImages)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "undefined")
	assert.NotContains(t, string(raw), `"venue"`)
}

func TestBuildPayloadEncodesImagesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garden.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	images := []Image{
		{Name: "first.jpg", Type: "image/jpeg", Data: []byte("jpeg-bytes")},
		{Path: path},
		{Name: "third.png", Data: pngHeader},
	}
	s := Reduce(Start(), AddImages{Images: images})

	p, err := BuildPayload(context.Background(), s.Draft)
	require.NoError(t, err)
	require.Len(t, p.InspirationImages, 3)

	assert.Equal(t, "first.jpg", p.InspirationImages[0].Name)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), p.InspirationImages[0].Data)

	assert.Equal(t, "garden.png", p.InspirationImages[1].Name)
	assert.Equal(t, "image/png", p.InspirationImages[1].Type)
	assert.True(t, strings.HasPrefix(p.InspirationImages[1].Data, "data:image/png;base64,"))

	assert.Equal(t, "third.png", p.InspirationImages[2].Name)
	assert.Equal(t, "image/png", p.InspirationImages[2].Type)
}

func TestBuildPayloadRejectsBadImages(t *testing.T) {
	tests := []struct {
		name  string
		image Image
	}{
		{"not an image", Image{Name: "notes.txt", Data: []byte("plain text, not a picture")}},
		{"empty", Image{Name: "empty.png", Type: "image/png"}},
		{"missing file", Image{Path: filepath.Join(t.TempDir(), "missing.png")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft()
			draft.Images = []Image{{Name: "ok.png", Data: pngHeader}, tt.image}
			_, err := BuildPayload(context.Background(), draft)
			assert.Error(t, err)
		})
	}
}

func TestBuildPayloadStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	draft := NewDraft()
	draft.Images = []Image{{Name: "a.png", Data: pngHeader}}
	_, err := BuildPayload(ctx, draft)
	assert.ErrorIs(t, err, context.Canceled)
}
