package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/auradrive/auradrive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeServe struct {
	data   map[string][]byte
	err    error
	serves int
}

func (f *fakeServe) Serve(_ context.Context, id string) ([]byte, error) {
	f.serves++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[id], nil
}

func (f *fakeServe) DownloadURL(id string) string {
	return "http://backend/api/files/" + id + "/download"
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mimeType string
		want     Kind
	}{
		{"image/png", KindImage},
		{"image/svg+xml", KindImage},
		{"video/mp4", KindVideo},
		{"audio/mpeg", KindAudio},
		{"application/pdf", KindPDF},
		{"text/plain", KindText},
		{"text/csv", KindText},
		{"application/zip", KindUnsupported},
		{"", KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mimeType))
		})
	}
}

func TestOpenTextRendersVerbatim(t *testing.T) {
	body := "line one\n<script>alert(1)</script>\nline three"
	api := &fakeServe{data: map[string][]byte{"f1": []byte(body)}}
	p := NewPanel(api, zap.NewNop())

	content := p.Open(context.Background(), models.Entry{
		ID: "f1", Filename: "notes.txt", Type: models.EntryFile, Filetype: "text/plain",
	})

	assert.Equal(t, KindText, content.Kind)
	assert.Equal(t, body, content.Text)
	assert.Equal(t, 1, api.serves)
	require.NotNil(t, p.Current())

	p.Close()
	assert.Nil(t, p.Current())
}

func TestOpenBinaryHoldsResourceUntilClose(t *testing.T) {
	api := &fakeServe{data: map[string][]byte{"f1": []byte("png bytes")}}
	p := NewPanel(api, zap.NewNop())

	content := p.Open(context.Background(), models.Entry{
		ID: "f1", Filename: "photo.png", Type: models.EntryFile, Filetype: "image/png",
	})

	assert.Equal(t, KindImage, content.Kind)
	require.NotNil(t, content.Resource)
	assert.Equal(t, []byte("png bytes"), content.Resource.Bytes())
	assert.False(t, content.Resource.Released())

	p.Close()
	assert.True(t, content.Resource.Released())
	assert.Nil(t, content.Resource.Bytes())
}

func TestOpenNewEntryReleasesPreviousResource(t *testing.T) {
	api := &fakeServe{data: map[string][]byte{
		"f1": []byte("first"),
		"f2": []byte("second"),
	}}
	p := NewPanel(api, zap.NewNop())
	ctx := context.Background()

	first := p.Open(ctx, models.Entry{ID: "f1", Filename: "a.mp4", Filetype: "video/mp4"})
	second := p.Open(ctx, models.Entry{ID: "f2", Filename: "b.mp4", Filetype: "video/mp4"})

	assert.True(t, first.Resource.Released())
	assert.False(t, second.Resource.Released())
	assert.Equal(t, []byte("second"), second.Resource.Bytes())
}

func TestOpenUnsupportedSkipsFetch(t *testing.T) {
	api := &fakeServe{}
	p := NewPanel(api, zap.NewNop())

	content := p.Open(context.Background(), models.Entry{
		ID: "f1", Filename: "archive.zip", Filetype: "application/zip",
	})

	assert.Equal(t, KindUnsupported, content.Kind)
	assert.Equal(t, "http://backend/api/files/f1/download", content.DownloadURL)
	assert.Nil(t, content.Resource)
	assert.Zero(t, api.serves)
}

func TestOpenFetchFailureDegradesToFallback(t *testing.T) {
	api := &fakeServe{err: errors.New("boom")}
	p := NewPanel(api, zap.NewNop())

	content := p.Open(context.Background(), models.Entry{
		ID: "f1", Filename: "notes.txt", Filetype: "text/plain",
	})

	assert.Equal(t, KindUnsupported, content.Kind)
	assert.Equal(t, "http://backend/api/files/f1/download", content.DownloadURL)
	assert.Empty(t, content.Text)
}

func TestResourceReleaseIsIdempotent(t *testing.T) {
	r := &Resource{data: []byte("x")}
	r.Release()
	r.Release()
	assert.True(t, r.Released())
	assert.Nil(t, r.Bytes())
}
