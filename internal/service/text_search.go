package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"pdf-viewer/internal/domain"

	"github.com/ledongthuc/pdf"
	"github.com/patrickmn/go-cache"
)

const (
	pageTextTTL     = 30 * time.Minute
	pageTextCleanup = 10 * time.Minute
)

// pageText is the text layer of one page: the lowercased runes of every
// text run, with the box of the glyph each rune came from.
type pageText struct {
	runes    []rune
	original []rune
	boxes    []domain.BoundingBox
}

// PDFTextSearcher finds case-insensitive matches in the text layer of a
// document. Extracted pages are cached per document handle.
type PDFTextSearcher struct {
	pages  *cache.Cache
	logger domain.Logger
}

// NewPDFTextSearcher creates a searcher with its own page-text cache.
func NewPDFTextSearcher(logger domain.Logger) *PDFTextSearcher {
	return &PDFTextSearcher{
		pages:  cache.New(pageTextTTL, pageTextCleanup),
		logger: logger,
	}
}

// Search implements domain.TextSearcher. Matches are reported in page
// order, then in reading order within a page.
func (s *PDFTextSearcher) Search(ctx context.Context, doc *domain.Document, term string) ([]domain.SearchResult, error) {
	if doc == nil {
		return nil, domain.ErrNoDocument
	}
	needle := foldRunes(strings.TrimSpace(term))
	if len(needle) == 0 {
		return []domain.SearchResult{}, nil
	}

	pages, err := s.textLayer(ctx, doc)
	if err != nil {
		return nil, err
	}

	results := []domain.SearchResult{}
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, at := range indexAll(page.runes, needle) {
			end := at + len(needle)
			results = append(results, domain.SearchResult{
				PageNumber:  i + 1,
				TextContent: string(page.original[at:end]),
				MatchIndex:  len(results),
				BoundingBox: unionBoxes(page.boxes[at:end]),
			})
		}
	}
	return results, nil
}

// Forget drops the cached text of a document.
func (s *PDFTextSearcher) Forget(handle string) {
	s.pages.Delete(handle)
}

func (s *PDFTextSearcher) textLayer(ctx context.Context, doc *domain.Document) ([]pageText, error) {
	if cached, ok := s.pages.Get(doc.Handle); ok {
		return cached.([]pageText), nil
	}

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return nil, fmt.Errorf("open text layer: %w", err)
	}

	pages := make([]pageText, r.NumPage())
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		pt, err := extractPage(page)
		if err != nil {
			s.logger.Warn("Skipping unreadable page text", "handle", doc.Handle, "page", i+1, "error", err)
			continue
		}
		pages[i] = pt
	}

	s.pages.Set(doc.Handle, pages, cache.DefaultExpiration)
	return pages, nil
}

// extractPage flattens the positioned text runs of a page. The parser
// panics on some malformed content streams.
func extractPage(page pdf.Page) (pt pageText, err error) {
	defer func() {
		if r := recover(); r != nil {
			pt = pageText{}
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	for _, t := range page.Content().Text {
		runes := []rune(t.S)
		if len(runes) == 0 {
			continue
		}
		w := t.W / float64(len(runes))
		for j, r := range runes {
			pt.original = append(pt.original, r)
			pt.runes = append(pt.runes, foldRune(r))
			pt.boxes = append(pt.boxes, domain.BoundingBox{
				X:      t.X + float64(j)*w,
				Y:      t.Y,
				Width:  w,
				Height: t.FontSize,
			})
		}
	}
	return pt, nil
}

// foldRune lowers one rune. Needle and page text are folded rune by rune
// with the same mapping, so a match index into the folded text is also an
// index into the original runes.
func foldRune(r rune) rune {
	return unicode.ToLower(r)
}

func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = foldRune(r)
	}
	return runes
}

func indexAll(haystack, needle []rune) []int {
	var out []int
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if equalRunes(haystack[i:i+len(needle)], needle) {
			out = append(out, i)
		}
	}
	return out
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func unionBoxes(boxes []domain.BoundingBox) domain.BoundingBox {
	if len(boxes) == 0 {
		return domain.BoundingBox{}
	}
	minX, minY := boxes[0].X, boxes[0].Y
	maxX, maxY := minX+boxes[0].Width, minY+boxes[0].Height
	for _, b := range boxes[1:] {
		minX = min(minX, b.X)
		minY = min(minY, b.Y)
		maxX = max(maxX, b.X+b.Width)
		maxY = max(maxY, b.Y+b.Height)
	}
	return domain.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
