// Package certificate renders synthetic certificates used as demo input for
// the authenticity scorer.
package certificate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"os"

	"github.com/factchecker/certverify/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions.
const (
	Width  = 600
	Height = 400
)

const (
	DefaultFontSize          = 30
	DefaultWatermarkFontSize = 40

	minSerial = 10000
	maxSerial = 99999

	watermarkAlpha = 45
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	gold      = color.RGBA{255, 215, 0, 255}
	blue      = color.RGBA{0, 0, 255, 255}
	green     = color.RGBA{0, 128, 0, 255}
	red       = color.RGBA{255, 0, 0, 255}
	lightGray = color.RGBA{211, 211, 211, 255}
	watermark = color.NRGBA{0, 0, 255, watermarkAlpha}
)

var (
	borderRect = image.Rect(10, 10, Width-10+1, Height-10+1)
	qrRect     = image.Rect(450, 300, 551, 351)
)

const borderWidth = 3

// Text stays this far inside the border.
const textInset = 8

var contentRect = borderRect.Inset(borderWidth + textInset)

const (
	minFontSize = 8

	serialGap  = 8
	captionPad = 4
)

// textLine positions are top-left corners of the text box.
type textLine struct {
	text  string
	at    image.Point
	color color.Color
}

// placedText is a text line with the face it is drawn in and the box it
// covers.
type placedText struct {
	textLine
	face   font.Face
	bounds image.Rectangle
}

// certLayout holds every text element of one certificate.
type certLayout struct {
	body    []placedText
	serial  placedText
	caption placedText
	marks   []placedText
}

func (l *certLayout) all() []placedText {
	out := append([]placedText{}, l.body...)
	out = append(out, l.serial, l.caption)
	return append(out, l.marks...)
}

func (l *certLayout) close() {
	for _, p := range l.all() {
		p.face.Close()
	}
}

// Generator renders sample certificates. It is safe for concurrent use.
type Generator struct {
	font              *opentype.Font
	fontSize          float64
	watermarkFontSize float64
	newRand           func() *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithFontFile uses the TrueType/OpenType font at path as the preferred
// font. An unreadable file keeps the embedded Go Regular font; a file that
// does not parse falls back to the built-in bitmap face.
func WithFontFile(path string) Option {
	return func(g *Generator) {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Font file unavailable, using Go Regular")
			return
		}
		g.font = parseFont(data)
	}
}

// WithFontSize sets the point sizes of body and watermark text.
func WithFontSize(body, mark float64) Option {
	return func(g *Generator) {
		if body > 0 {
			g.fontSize = body
		}
		if mark > 0 {
			g.watermarkFontSize = mark
		}
	}
}

// WithRand sets the random source factory used for serial numbers.
func WithRand(f func() *rand.Rand) Option {
	return func(g *Generator) {
		if f != nil {
			g.newRand = f
		}
	}
}

// NewGenerator creates a generator using the Go Regular font unless
// overridden by options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		font:              parseFont(goregular.TTF),
		fontSize:          DefaultFontSize,
		watermarkFontSize: DefaultWatermarkFontSize,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders a genuine or fraudulent certificate with a fresh serial.
func (g *Generator) Generate(isGenuine bool) *models.CertificateAsset {
	return g.GenerateWithRand(g.newRand(), isGenuine)
}

// GenerateWithRand is Generate against a caller-owned random source.
func (g *Generator) GenerateWithRand(r *rand.Rand, isGenuine bool) *models.CertificateAsset {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	strokeRect(img, borderRect, borderWidth, gold)

	serial := NewSerial(r)
	lay := g.layout(isGenuine, serial)
	defer lay.close()

	for _, p := range lay.body {
		drawText(img, p)
	}
	drawText(img, lay.serial)

	draw.Draw(img, qrRect, image.NewUniform(lightGray), image.Point{}, draw.Src)
	strokeRect(img, qrRect, 1, black)
	drawText(img, lay.caption)

	if isGenuine {
		applyWatermark(img, lay.marks)
	}

	log.Debug().
		Bool("genuine", isGenuine).
		Str("serial", serial).
		Msg("Certificate generated")

	return &models.CertificateAsset{
		Image:     img,
		Serial:    serial,
		IsGenuine: isGenuine,
	}
}

// layout places every text element. Lines keep their anchor and shrink to
// stay inside the border. The serial ends before the QR box and the
// caption is centered inside it.
func (g *Generator) layout(isGenuine bool, serial string) *certLayout {
	status, statusColor := "FRAUDULENT", color.Color(red)
	if isGenuine {
		status, statusColor = "GENUINE", green
	}

	lay := &certLayout{}
	for _, l := range []textLine{
		{"CERTIFICATE OF AUTHENTICITY", image.Pt(150, 50), black},
		{"This is to certify that", image.Pt(150, 120), black},
		{"SAMPLE DOCUMENT", image.Pt(200, 160), blue},
		{"has been verified as", image.Pt(150, 200), black},
		{status, image.Pt(230, 240), statusColor},
	} {
		lay.body = append(lay.body, g.fit(g.fontSize, l, contentRect.Max.X-l.at.X, contentRect.Max.Y-l.at.Y))
	}

	// Right-aligned against the QR box when the nominal anchor is too far right.
	serialRight := qrRect.Min.X - serialGap
	sl := textLine{serial, image.Pt(350, 300), black}
	sp := g.fit(g.fontSize, sl, serialRight-contentRect.Min.X, contentRect.Max.Y-sl.at.Y)
	if sp.bounds.Max.X > serialRight {
		sp = sp.moveTo(image.Pt(serialRight-sp.bounds.Dx(), sl.at.Y))
	}
	lay.serial = sp

	inner := qrRect.Inset(captionPad)
	cp := g.fit(g.fontSize, textLine{"QR CODE", inner.Min, black}, inner.Dx(), inner.Dy())
	lay.caption = cp.moveTo(image.Pt(
		qrRect.Min.X+(qrRect.Dx()-cp.bounds.Dx())/2,
		qrRect.Min.Y+(qrRect.Dy()-cp.bounds.Dy())/2,
	))

	if isGenuine {
		for _, l := range []textLine{
			{"SECURE", image.Pt(100, 150), watermark},
			{"OFFICIAL", image.Pt(300, 250), watermark},
		} {
			lay.marks = append(lay.marks, g.fit(g.watermarkFontSize, l, contentRect.Max.X-l.at.X, contentRect.Max.Y-l.at.Y))
		}
	}
	return lay
}

// fit returns the line in the largest face, starting at size, whose text
// box is at most maxW by maxH pixels.
func (g *Generator) fit(size float64, l textLine, maxW, maxH int) placedText {
	for {
		p := place(g.face(size), l)
		if g.font == nil || size <= minFontSize || (p.bounds.Dx() <= maxW && p.bounds.Dy() <= maxH) {
			return p
		}
		p.face.Close()
		size--
	}
}

func place(face font.Face, l textLine) placedText {
	m := face.Metrics()
	w := font.MeasureString(face, l.text).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	return placedText{
		textLine: l,
		face:     face,
		bounds:   image.Rect(l.at.X, l.at.Y, l.at.X+w, l.at.Y+h),
	}
}

func (p placedText) moveTo(at image.Point) placedText {
	p.bounds = p.bounds.Add(at.Sub(p.at))
	p.at = at
	return p
}

// NewSerial draws a serial label with a number in [10000, 99999].
func NewSerial(r *rand.Rand) string {
	return fmt.Sprintf("Serial: %d", minSerial+r.IntN(maxSerial-minSerial+1))
}

// Filename returns the download name of a sample certificate.
func Filename(isGenuine bool) string {
	if isGenuine {
		return models.GenuineSampleName
	}
	return models.FakeSampleName
}

func applyWatermark(img *image.RGBA, marks []placedText) {
	layer := image.NewNRGBA(img.Bounds())
	for _, p := range marks {
		drawText(layer, p)
	}
	draw.Draw(img, img.Bounds(), layer, image.Point{}, draw.Over)
}

// face returns a scalable face at size, or the bitmap face when no
// scalable font is available.
func (g *Generator) face(size float64) font.Face {
	if g.font == nil {
		return basicfont.Face7x13
	}
	f, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Font face unavailable, using default font")
		return basicfont.Face7x13
	}
	return f
}

func parseFont(data []byte) *opentype.Font {
	f, err := opentype.Parse(data)
	if err != nil {
		log.Warn().Err(err).Msg("Font parse failed, using default font")
		return nil
	}
	return f
}

func drawText(dst draw.Image, p placedText) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(p.color),
		Face: p.face,
		Dot:  fixed.P(p.at.X, p.at.Y+p.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(p.text)
}

func strokeRect(img draw.Image, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, b := range bands {
		draw.Draw(img, b, src, image.Point{}, draw.Src)
	}
}
