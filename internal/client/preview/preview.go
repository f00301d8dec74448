// Package preview renders a single entry's content by MIME category. A
// fetched binary body is held as a transient Resource owned by the panel and
// released when the panel closes or the target entry changes, so repeated
// previews do not accumulate buffers.
package preview

import (
	"context"
	"strings"
	"sync"

	"github.com/auradrive/auradrive/internal/models"
	"go.uber.org/zap"
)

// Kind is the rendering strategy for an entry, decided purely by MIME
// prefix.
type Kind string

const (
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindAudio       Kind = "audio"
	KindPDF         Kind = "pdf"
	KindText        Kind = "text"
	KindUnsupported Kind = "unsupported"
)

// Classify maps a MIME type to its rendering strategy.
func Classify(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return KindAudio
	case mimeType == "application/pdf":
		return KindPDF
	case strings.HasPrefix(mimeType, "text/"):
		return KindText
	default:
		return KindUnsupported
	}
}

// ServeAPI is the slice of the backend client the panel needs.
type ServeAPI interface {
	Serve(ctx context.Context, id string) ([]byte, error)
	DownloadURL(id string) string
}

// Resource is a fetched binary body. It must be released exactly once, when
// the panel closes or the target changes.
type Resource struct {
	mu       sync.Mutex
	data     []byte
	released bool
}

// Bytes returns the held content, or nil after release.
func (r *Resource) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// Release drops the held content. Safe to call more than once.
func (r *Resource) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	r.released = true
}

// Released reports whether Release has been called.
func (r *Resource) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Content is what the panel shows for one entry. Exactly one of Resource,
// Text, or DownloadURL is meaningful, keyed by Kind.
type Content struct {
	Kind     Kind
	Filename string
	// Resource holds the fetched bytes for image, video, audio and pdf.
	Resource *Resource
	// Text holds the verbatim body for text entries.
	Text string
	// DownloadURL is the direct-download affordance of the no-preview
	// fallback.
	DownloadURL string
}

// Panel previews one entry at a time.
type Panel struct {
	api    ServeAPI
	logger *zap.Logger

	mu      sync.Mutex
	current *Content
}

// NewPanel constructs a Panel.
func NewPanel(api ServeAPI, logger *zap.Logger) *Panel {
	return &Panel{api: api, logger: logger}
}

// Open fetches and classifies the entry's content. Opening a new entry
// releases the previous one's resource. A failed fetch degrades to the
// no-preview fallback rather than failing the panel.
func (p *Panel) Open(ctx context.Context, entry models.Entry) *Content {
	p.Close()

	content := &Content{
		Kind:     Classify(entry.Filetype),
		Filename: entry.Filename,
	}

	switch content.Kind {
	case KindUnsupported:
		content.DownloadURL = p.api.DownloadURL(entry.ID)
	case KindText:
		data, err := p.api.Serve(ctx, entry.ID)
		if err != nil {
			p.logger.Warn("preview fetch failed", zap.String("id", entry.ID), zap.Error(err))
			content.Kind = KindUnsupported
			content.DownloadURL = p.api.DownloadURL(entry.ID)
			break
		}
		content.Text = string(data)
	default:
		data, err := p.api.Serve(ctx, entry.ID)
		if err != nil {
			p.logger.Warn("preview fetch failed", zap.String("id", entry.ID), zap.Error(err))
			content.Kind = KindUnsupported
			content.DownloadURL = p.api.DownloadURL(entry.ID)
			break
		}
		content.Resource = &Resource{data: data}
	}

	p.mu.Lock()
	p.current = content
	p.mu.Unlock()
	return content
}

// Current returns the content being shown, or nil when the panel is closed.
func (p *Panel) Current() *Content {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close releases the held resource, if any, and empties the panel.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.Resource != nil {
		p.current.Resource.Release()
	}
	p.current = nil
}
