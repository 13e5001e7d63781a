package pkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// DefaultBaseURL is where the service authorization reference lives
	DefaultBaseURL = "https://docs.aws.amazon.com/service-authorization/latest/reference/"

	// IndexDocument lists every service page of the reference
	IndexDocument = "reference_policies_actions-resources-contextkeys.html"

	defaultUserAgent   = "iamgen"
	defaultMaxBodySize = 16 << 20
)

// ErrBodyTooLarge is returned when a document exceeds the configured size limit
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher retrieves documents of the service authorization reference by file name
type Fetcher interface {
	// URL returns where a document is read from
	URL(document string) string
	Fetch(ctx context.Context, document string) (io.ReadCloser, error)
}

// PageDocument returns the document name of a service page: "amazonec2" -> "list_amazonec2.html"
func PageDocument(slug string) string {
	return "list_" + NormalizeSlug(slug) + ".html"
}

func documentSlug(document string) string {
	if document == IndexDocument {
		return document
	}
	return NormalizeSlug(document)
}

// HTTPFetcher downloads documents over HTTP
type HTTPFetcher struct {
	baseURL     string       // base URL every document name is appended to
	userAgent   string       // User-Agent header value sent with requests
	httpClient  *http.Client // underlying HTTP client
	maxBodySize int64        // documents larger than this fail
	timeout     time.Duration
}

// FetcherOption configures an HTTPFetcher
type FetcherOption func(f *HTTPFetcher)

// NewHTTPFetcher creates a fetcher reading from DefaultBaseURL unless configured otherwise
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	fetcher := &HTTPFetcher{
		baseURL:     DefaultBaseURL,
		userAgent:   defaultUserAgent,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	// the given client may be shared, so the timeout goes on a copy
	if fetcher.timeout > 0 {
		client := *fetcher.httpClient
		client.Timeout = fetcher.timeout
		fetcher.httpClient = &client
	}
	return fetcher
}

// WithBaseURL sets the URL documents are resolved against
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *HTTPFetcher) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		f.baseURL = baseURL
	}
}

// WithUserAgent sets the User-Agent header for HTTP requests
func WithUserAgent(userAgent string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.httpClient = client
	}
}

// WithTimeout sets the timeout of a single request, whatever client is used
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = timeout
	}
}

// WithMaxBodySize limits the size of a single document
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// URL returns the address of a document
func (f *HTTPFetcher) URL(document string) string {
	return f.baseURL + document
}

// Fetch downloads a document with a single request. Any failure, including a
// non-200 status, is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, document string) (io.ReadCloser, error) {
	url := f.URL(document)
	fetchErr := func(status int, err error) error {
		return &FetchError{Slug: documentSlug(document), URL: url, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetchErr(0, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fetchErr(0, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fetchErr(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return &limitedBody{
		body:      resp.Body,
		remaining: f.maxBodySize,
		onLimit:   func() error { return fetchErr(0, ErrBodyTooLarge) },
	}, nil
}

// limitedBody fails reads past the size limit instead of silently truncating the document
type limitedBody struct {
	body      io.ReadCloser
	remaining int64
	onLimit   func() error
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		var probe [1]byte
		if n, _ := b.body.Read(probe[:]); n > 0 {
			return 0, b.onLimit()
		}
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.body.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *limitedBody) Close() error {
	return b.body.Close()
}

// DirFetcher reads saved documents from a directory of the input filesystem
type DirFetcher struct {
	Dir string
}

// NewDirFetcher creates a fetcher reading documents from dir
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{Dir: dir}
}

// URL returns the path of a saved document
func (f *DirFetcher) URL(document string) string {
	return path.Join(f.Dir, document)
}

// Fetch opens a saved document. A missing file is a *FetchError like a failed download.
func (f *DirFetcher) Fetch(ctx context.Context, document string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Slug: documentSlug(document), URL: f.URL(document), Err: err}
	}
	file, err := inputFs.Open(f.URL(document))
	if err != nil {
		return nil, &FetchError{Slug: documentSlug(document), URL: f.URL(document), Err: err}
	}
	return file, nil
}

// SavingFetcher stores every fetched document in a directory of the output
// filesystem, so a later run can replay it with a DirFetcher
type SavingFetcher struct {
	Fetcher Fetcher
	Dir     string
}

// URL returns the location of the wrapped fetcher
func (f *SavingFetcher) URL(document string) string {
	return f.Fetcher.URL(document)
}

// Fetch reads the whole document, saves it and returns its content
func (f *SavingFetcher) Fetch(ctx context.Context, document string) (io.ReadCloser, error) {
	body, err := f.Fetcher.Fetch(ctx, document)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, asFetchError(err, document, f.URL(document))
	}
	if err := outputFs.MkdirAll(f.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", f.Dir, err)
	}
	target := path.Join(f.Dir, document)
	if err := afero.WriteFile(outputFs, target, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", target, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ListServiceSlugs reads the reference index and returns the slug of every linked
// service page, in document order without duplicates
func ListServiceSlugs(ctx context.Context, fetcher Fetcher) ([]string, error) {
	body, err := fetcher.Fetch(ctx, IndexDocument)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return nil, asFetchError(err, IndexDocument, fetcher.URL(IndexDocument))
	}
	return serviceSlugs(doc), nil
}

func serviceSlugs(doc *html.Node) []string {
	var slugs []string
	seen := make(map[string]bool)
	for _, link := range findAll(doc, isElement(atom.A)) {
		href := attr(link, "href")
		base := path.Base(href)
		if i := strings.IndexAny(base, "#?"); i >= 0 {
			base = base[:i]
		}
		if !strings.HasPrefix(base, "list_") || !strings.HasSuffix(base, ".html") {
			continue
		}
		slug := NormalizeSlug(base)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs
}

// asFetchError keeps a *FetchError as is and wraps anything else into one
func asFetchError(err error, document, url string) error {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return &FetchError{Slug: documentSlug(document), URL: url, Err: err}
}
