package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"pdf-viewer/internal/domain"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// SourceOptions bounds what PDFDocumentSource accepts.
type SourceOptions struct {
	MaxFileSize  int64
	FetchTimeout time.Duration
	// AllowPrivateHosts lets document URLs reach loopback, private and
	// link-local addresses.
	AllowPrivateHosts bool
	// HTTPClient replaces the guarded default client.
	HTTPClient *http.Client
}

const maxFetchRedirects = 5

// PDFDocumentSource opens PDF bytes, inline or fetched from a URL, and
// reads page count, metadata and bookmarks with pdfcpu.
type PDFDocumentSource struct {
	opts   SourceOptions
	logger domain.Logger
}

// NewPDFDocumentSource creates a document source.
func NewPDFDocumentSource(opts SourceOptions, logger domain.Logger) *PDFDocumentSource {
	if opts.HTTPClient == nil {
		opts.HTTPClient = newFetchClient(opts.AllowPrivateHosts)
	}
	return &PDFDocumentSource{opts: opts, logger: logger}
}

// Open implements domain.DocumentSource.
func (s *PDFDocumentSource) Open(ctx context.Context, ref domain.DocumentRef) (*domain.Document, error) {
	data := ref.Data
	name := ref.Name
	if len(data) == 0 && ref.URL != "" {
		fetched, err := s.fetch(ctx, ref.URL)
		if err != nil {
			return nil, err
		}
		data = fetched
		if name == "" {
			name = path.Base(ref.URL)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidDocument)
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrDocumentTooLarge, len(data))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if pdfCtx.PageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrInvalidDocument)
	}

	xref := pdfCtx.XRefTable
	info := domain.DocumentInfo{
		Name:         name,
		NumPages:     pdfCtx.PageCount,
		Title:        xref.Title,
		Author:       xref.Author,
		Subject:      xref.Subject,
		Keywords:     xref.Keywords,
		Creator:      xref.Creator,
		Producer:     xref.Producer,
		CreationDate: xref.CreationDate,
		ModDate:      xref.ModDate,
		FileSize:     int64(len(data)),
	}

	doc := &domain.Document{
		Handle:  uuid.NewString(),
		Data:    data,
		Info:    info,
		Outline: s.outline(data, conf, pdfCtx.PageCount),
	}
	s.logger.Debug("PDF opened", "handle", doc.Handle, "pages", info.NumPages, "bytes", len(data))
	return doc, nil
}

// outline reads the bookmark tree. Documents without bookmarks, or with a
// tree pdfcpu cannot read, get an empty outline.
func (s *PDFDocumentSource) outline(data []byte, conf *model.Configuration, numPages int) []domain.OutlineItem {
	bms, err := api.Bookmarks(bytes.NewReader(data), conf)
	if err != nil {
		s.logger.Debug("No readable outline", "error", err)
		return []domain.OutlineItem{}
	}
	return convertBookmarks(bms, 0, numPages)
}

func convertBookmarks(bms []pdfcpu.Bookmark, level, numPages int) []domain.OutlineItem {
	items := make([]domain.OutlineItem, 0, len(bms))
	for _, bm := range bms {
		page := bm.PageFrom
		if page < 1 || page > numPages {
			page = 0
		}
		item := domain.OutlineItem{
			Title:      strings.TrimSpace(bm.Title),
			PageNumber: page,
			Level:      level,
		}
		if len(bm.Kids) > 0 {
			item.Children = convertBookmarks(bm.Kids, level+1, numPages)
		}
		items = append(items, item)
	}
	return items
}

func (s *PDFDocumentSource) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	if err := checkFetchURL(u); err != nil {
		return nil, err
	}
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrURLNotAllowed) {
			s.logger.Warn("Document URL refused", "host", u.Host, "error", err)
		}
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch document: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if s.opts.MaxFileSize > 0 {
		if resp.ContentLength > s.opts.MaxFileSize {
			return nil, fmt.Errorf("%w: %d bytes", domain.ErrDocumentTooLarge, resp.ContentLength)
		}
		body = io.LimitReader(resp.Body, s.opts.MaxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrDocumentTooLarge, s.opts.MaxFileSize)
	}
	return data, nil
}

// newFetchClient builds the client used for document URLs. Unless
// allowPrivate is set it refuses to connect to non-public addresses; the
// check runs on the resolved address, so names pointing inside the network
// are refused as well.
func newFetchClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = refuseNonPublic
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would be dialled instead of the document host.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFetchRedirects {
				return fmt.Errorf("stopped after %d redirects", maxFetchRedirects)
			}
			return checkFetchURL(req.URL)
		},
	}
}

func checkFetchURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", domain.ErrURLNotAllowed, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", domain.ErrURLNotAllowed)
	}
	return nil
}

func refuseNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrURLNotAllowed, address)
	}
	if !isPublicAddr(addr) {
		return fmt.Errorf("%w: %s is not a public address", domain.ErrURLNotAllowed, addr)
	}
	return nil
}

// Carrier-grade NAT space, not covered by netip.Addr.IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate() && !sharedAddressSpace.Contains(addr)
}
