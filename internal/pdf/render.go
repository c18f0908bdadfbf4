package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/garnizeh/ambucheck/internal/uploads"
)

// fontFamily is DejaVu Sans Condensed, embedded so stored values outside
// Latin-1 print as written.
const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

const (
	margin      = 50.0
	boxPadding  = 5.0
	imageHeight = 360.0
)

// ImageFetcher resolves an upload reference to image bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (*uploads.Image, error)
}

type Options struct {
	// Compress deflates page streams; tests turn it off to inspect text.
	Compress bool
	// Now stamps the document creation date.
	Now time.Time
}

type renderer struct {
	ctx    context.Context
	doc    *fpdf.Fpdf
	images ImageFetcher
	n      int
}

// Render writes plan to w. Images that cannot be fetched or decoded are
// printed as text.
func Render(ctx context.Context, w io.Writer, plan Plan, images ImageFetcher, opts Options) error {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetCompression(opts.Compress)
	doc.AddUTF8FontFromBytes(fontFamily, "", regularFont)
	doc.AddUTF8FontFromBytes(fontFamily, "B", boldFont)
	doc.SetCreator("AmbuCheck", false)
	doc.SetTitle(plan.Title, true)
	if !opts.Now.IsZero() {
		doc.SetCreationDate(opts.Now)
	}

	r := &renderer{
		ctx:    ctx,
		doc:    doc,
		images: images,
	}
	r.render(plan)

	if err := doc.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return doc.Output(w)
}

// Bytes is Render into memory.
func Bytes(ctx context.Context, plan Plan, images ImageFetcher, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(ctx, &buf, plan, images, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *renderer) render(plan Plan) {
	d := r.doc
	d.AddPage()

	if plan.Styled {
		d.SetFont(fontFamily, "B", 20)
		d.MultiCell(0, 24, plan.Title, "", "L", false)
		d.Ln(4)
		d.SetFont(fontFamily, "", 9)
		d.SetTextColor(102, 102, 102)
		for _, m := range plan.Meta {
			d.MultiCell(0, 12, m, "", "L", false)
		}
		d.SetTextColor(0, 0, 0)
		d.Ln(14)
	} else {
		d.SetFont(fontFamily, "B", 16)
		d.MultiCell(0, 20, plan.Title, "", "L", false)
		d.Ln(6)
		d.SetFont(fontFamily, "", 11)
		for _, m := range plan.Meta {
			d.MultiCell(0, 14, m, "", "L", false)
		}
		d.Ln(12)
	}

	for _, it := range plan.Items {
		switch it.Kind {
		case KindHeading:
			r.heading(it, plan.Styled)
		case KindField:
			r.field(it)
		case KindLine:
			d.SetFont(fontFamily, "", 10)
			d.MultiCell(0, 13, it.Label+": "+it.Value, "", "L", false)
		case KindImage:
			r.image(it, plan.Styled)
		}
	}
}

func (r *renderer) heading(it Item, styled bool) {
	d := r.doc
	if styled {
		d.Ln(6)
		d.SetFont(fontFamily, "B", 13)
		d.MultiCell(0, 16, it.Label, "", "L", false)
		d.Ln(6)
		return
	}
	d.Ln(8)
	d.SetFont(fontFamily, "BU", 12)
	d.MultiCell(0, 15, it.Label, "", "L", false)
	d.Ln(4)
}

func (r *renderer) field(it Item) {
	d := r.doc
	d.SetFont(fontFamily, "", 10)
	d.MultiCell(0, 13, it.Label, "", "L", false)
	d.Ln(3)
	r.box(it.Value)
}

func (r *renderer) box(value string) {
	d := r.doc
	d.SetFont(fontFamily, "", 10)
	d.SetFillColor(245, 245, 245)
	d.SetDrawColor(224, 224, 224)
	d.SetCellMargin(boxPadding)
	d.MultiCell(0, 14, value, "1", "L", true)
	d.SetCellMargin(0)
	d.Ln(8)
}

func (r *renderer) image(it Item, styled bool) {
	d := r.doc
	d.SetFont(fontFamily, "B", 11)
	d.MultiCell(0, 14, it.Label, "", "L", false)
	d.Ln(3)

	if r.embed(it.Value) {
		return
	}
	if styled {
		r.box(it.Value)
		return
	}
	d.SetFont(fontFamily, "", 10)
	d.MultiCell(0, 13, it.Value, "", "L", false)
	d.Ln(4)
}

// embed puts the image on a page of its own, scaled to fit the content
// width and imageHeight.
func (r *renderer) embed(ref string) bool {
	if r.images == nil {
		return false
	}
	img, err := r.images.Fetch(r.ctx, ref)
	if err != nil || img == nil {
		return false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return false
	}

	d := r.doc
	r.n++
	name := fmt.Sprintf("img%d", r.n)
	d.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
	if d.Err() {
		// fpdf errors are sticky; clearing keeps the rest of the document.
		d.ClearError()
		return false
	}

	pageW, _ := d.GetPageSize()
	maxW := pageW - 2*margin
	w, h := float64(cfg.Width), float64(cfg.Height)
	scale := min(maxW/w, imageHeight/h)
	w, h = w*scale, h*scale

	d.AddPage()
	x := margin + (maxW-w)/2
	d.ImageOptions(name, x, d.GetY(), w, h, false, fpdf.ImageOptions{ImageType: img.Type}, 0, "")
	d.SetY(d.GetY() + h)
	d.Ln(10)
	return true
}
