package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/viewer"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// DefaultRenderDPI is the resolution of a page at scale 1.
const DefaultRenderDPI = 72.0

// maxRenderScale bounds the pixmap size of a single page.
const maxRenderScale = viewer.MaxScale

// FitzPageRenderer rasterises pages with MuPDF.
type FitzPageRenderer struct {
	dpi    float64
	logger domain.Logger
}

// NewFitzPageRenderer creates a renderer; dpi is the resolution at scale 1.
func NewFitzPageRenderer(dpi float64, logger domain.Logger) *FitzPageRenderer {
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	return &FitzPageRenderer{dpi: dpi, logger: logger}
}

type renderResult struct {
	img image.Image
	err error
}

// RenderPage implements domain.PageRenderer. The page is drawn at
// req.Scale times the base resolution and turned clockwise by
// req.Rotation degrees.
func (r *FitzPageRenderer) RenderPage(ctx context.Context, doc *domain.Document, req domain.RenderRequest) (*domain.RenderedPage, error) {
	if doc == nil {
		return nil, domain.ErrNoDocument
	}
	if req.PageNumber < 1 || req.PageNumber > doc.Info.NumPages {
		return nil, domain.ErrPageOutOfRange
	}
	if !(req.Scale > 0) || req.Scale > maxRenderScale {
		return nil, fmt.Errorf("render page %d: scale %v outside (0, %v]", req.PageNumber, req.Scale, maxRenderScale)
	}

	start := time.Now()
	resultCh := make(chan renderResult, 1)
	go func() {
		img, err := r.rasterise(doc.Data, req.PageNumber-1, req.Scale*r.dpi)
		resultCh <- renderResult{img: img, err: err}
	}()

	var res renderResult
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		r.logger.Warn("Page render failed", "page", req.PageNumber, "error", res.err)
		return nil, fmt.Errorf("render page %d: %w", req.PageNumber, res.err)
	}

	img := rotate(res.img, req.Rotation)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", req.PageNumber, err)
	}

	b := img.Bounds()
	r.logger.Debug("Page rendered", "page", req.PageNumber, "scale", req.Scale, "rotation", req.Rotation,
		"width", b.Dx(), "height", b.Dy(), "duration_ms", time.Since(start).Milliseconds())

	return &domain.RenderedPage{
		PageNumber:  req.PageNumber,
		Width:       b.Dx(),
		Height:      b.Dy(),
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}, nil
}

func (r *FitzPageRenderer) rasterise(data []byte, index int, dpi float64) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// rotate turns img clockwise by a multiple of 90 degrees.
func rotate(img image.Image, degrees int) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var (
		m   f64.Aff3
		dst *image.RGBA
	)
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		m = f64.Aff3{0, -1, h, 1, 0, 0}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	case 180:
		m = f64.Aff3{-1, 0, w, 0, -1, h}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	case 270:
		m = f64.Aff3{0, 1, 0, -1, 0, w}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	default:
		return img
	}

	// Transform expects source coordinates relative to the bounds origin.
	m[2] -= m[0]*float64(b.Min.X) + m[1]*float64(b.Min.Y)
	m[5] -= m[3]*float64(b.Min.X) + m[4]*float64(b.Min.Y)
	xdraw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
