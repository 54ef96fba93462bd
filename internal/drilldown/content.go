package drilldown

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"lineowner/internal/errors"
)

const (
	// ContentScheme prefixes every content identifier.
	ContentScheme = "git-commit"

	// DefaultCompressThreshold is the body size above which stored content
	// is kept zstd-compressed.
	DefaultCompressThreshold = 64 * 1024
)

// ContentFetcher reads a file at a revision. *git.GitAdapter satisfies it.
type ContentFetcher interface {
	FileContentAt(ctx context.Context, ref, relPath, workDir string) (string, error)
}

// ContentURI builds the identifier for relPath at ref, displayed as fileName.
// Every component is escaped, so names containing '#', '?' or '%' survive
// ParseContentURI.
//
//	git-commit:main.go?ref=abc123~1&path=cmd%2Fmain.go
func ContentURI(fileName, ref, relPath string) string {
	return ContentScheme + ":" + url.PathEscape(fileName) +
		"?ref=" + url.QueryEscape(ref) +
		"&path=" + url.QueryEscape(relPath)
}

// ParseContentURI extracts the ref and repo-relative path from an identifier.
func ParseContentURI(uri string) (ref string, relPath string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.NewOwnerError(errors.InvalidArgument, "Malformed content identifier", err, nil)
	}
	if u.Scheme != ContentScheme {
		return "", "", errors.NewOwnerError(errors.InvalidArgument, "Not a "+ContentScheme+" identifier", nil, nil).
			WithDetails(map[string]interface{}{"uri": uri})
	}
	q := u.Query()
	ref = q.Get("ref")
	relPath = q.Get("path")
	if ref == "" || relPath == "" {
		return "", "", errors.NewOwnerError(errors.InvalidArgument, "Content identifier lacks ref or path", nil, nil).
			WithDetails(map[string]interface{}{"uri": uri})
	}
	return ref, relPath, nil
}

type storedContent struct {
	compressed bool
	data       []byte
}

// ContentProvider maps content identifiers to file text. Unknown identifiers
// yield "". When a fetcher is configured, unknown identifiers are read from
// git on demand and remembered.
type ContentProvider struct {
	logger    *slog.Logger
	threshold int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder

	fetcher ContentFetcher
	workDir string

	mu        sync.RWMutex
	entries   map[string]storedContent
	closeOnce sync.Once
}

// NewContentProvider creates an empty provider. Bodies larger than threshold
// bytes are stored compressed; threshold <= 0 uses DefaultCompressThreshold.
func NewContentProvider(threshold int, logger *slog.Logger) (*ContentProvider, error) {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, errors.NewOwnerError(errors.InternalError, "Failed to create content encoder", err, nil)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.NewOwnerError(errors.InternalError, "Failed to create content decoder", err, nil)
	}
	return &ContentProvider{
		logger:    logger,
		threshold: threshold,
		encoder:   encoder,
		decoder:   decoder,
		entries:   make(map[string]storedContent),
	}, nil
}

// WithFetcher enables on-demand reads for identifiers not registered with
// SetContent.
func (p *ContentProvider) WithFetcher(fetcher ContentFetcher, workDir string) *ContentProvider {
	p.fetcher = fetcher
	p.workDir = workDir
	return p
}

// SetContent registers content under uri, replacing any previous body.
func (p *ContentProvider) SetContent(uri, content string) {
	stored := storedContent{data: []byte(content)}
	if len(content) > p.threshold {
		stored = storedContent{
			compressed: true,
			data:       p.encoder.EncodeAll([]byte(content), nil),
		}
	}

	p.mu.Lock()
	p.entries[uri] = stored
	p.mu.Unlock()

	p.logger.Debug("Content registered",
		"uri", uri,
		"bytes", len(content),
		"compressed", stored.compressed,
	)
}

// Provide returns the registered content for uri, or "" if unknown.
func (p *ContentProvider) Provide(uri string) string {
	content, _ := p.lookup(uri)
	return content
}

// ProvideContext is Provide with on-demand resolution through the fetcher.
// Resolution failures yield "".
func (p *ContentProvider) ProvideContext(ctx context.Context, uri string) string {
	if content, ok := p.lookup(uri); ok {
		return content
	}
	if p.fetcher == nil {
		return ""
	}

	ref, relPath, err := ParseContentURI(uri)
	if err != nil {
		p.logger.Debug("Unresolvable content identifier", "uri", uri, "error", err.Error())
		return ""
	}
	content, err := p.fetcher.FileContentAt(ctx, ref, relPath, p.workDir)
	if err != nil {
		return ""
	}
	p.SetContent(uri, content)
	return content
}

// Has reports whether uri is registered.
func (p *ContentProvider) Has(uri string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[uri]
	return ok
}

// Close releases the codec resources. Calls after the first do nothing.
func (p *ContentProvider) Close() {
	p.closeOnce.Do(func() {
		p.decoder.Close()
		_ = p.encoder.Close()
	})
}

func (p *ContentProvider) lookup(uri string) (string, bool) {
	p.mu.RLock()
	stored, ok := p.entries[uri]
	p.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !stored.compressed {
		return string(stored.data), true
	}

	raw, err := p.decoder.DecodeAll(stored.data, nil)
	if err != nil {
		p.logger.Warn("Stored content failed to decompress", "uri", uri, "error", err.Error())
		return "", false
	}
	return string(raw), true
}

// displayRef shortens full object ids in a ref for titles and logs.
func displayRef(ref string) string {
	base, suffix, found := strings.Cut(ref, "~")
	if len(base) > 8 {
		base = base[:8]
	}
	if found {
		return base + "~" + suffix
	}
	return base
}
