package report

import (
	"os"
	"strings"
	"sync"

	"github.com/phpdave11/gofpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const (
	coreFontFamily    = "Helvetica"
	unicodeFontFamily = "unicode"

	// FontEnvVar names a TrueType file used instead of the embedded Go fonts.
	FontEnvVar = "CERTVERIFY_PDF_FONT"
)

// unicodeFont is a TrueType font registered with gofpdf as UTF-8.
type unicodeFont struct {
	regular []byte
	bold    []byte
	glyphs  *sfnt.Font
}

var (
	fontOnce   sync.Once
	loadedFont *unicodeFont
)

func newUnicodeFont(regular, bold []byte) *unicodeFont {
	f, err := sfnt.Parse(regular)
	if err != nil {
		log.Warn().Err(err).Msg("PDF font parse failed")
		return nil
	}
	return &unicodeFont{regular: regular, bold: bold, glyphs: f}
}

func defaultUnicodeFont() *unicodeFont {
	fontOnce.Do(func() {
		if p := strings.TrimSpace(os.Getenv(FontEnvVar)); p != "" {
			data, err := os.ReadFile(p)
			if err == nil {
				if loadedFont = newUnicodeFont(data, data); loadedFont != nil {
					return
				}
			} else {
				log.Warn().Err(err).Str("path", p).Msg("PDF font unavailable, using Go fonts")
			}
		}
		loadedFont = newUnicodeFont(goregular.TTF, gobold.TTF)
	})
	return loadedFont
}

// textFont is the font family a document was set up with and the filter
// that keeps text within its glyph coverage.
type textFont struct {
	family string
	glyphs *sfnt.Font
}

// initUnicodeFont registers a UTF-8 font on pdf. When registration fails
// the core font is used and text is reduced to printable ASCII.
func initUnicodeFont(pdf *gofpdf.Fpdf) textFont {
	f := defaultUnicodeFont()
	if f == nil {
		return textFont{family: coreFontFamily}
	}

	pdf.AddUTF8FontFromBytes(unicodeFontFamily, "", f.regular)
	if pdf.Err() {
		log.Warn().Err(pdf.Error()).Msg("PDF font registration failed, using core font")
		pdf.ClearError()
		return textFont{family: coreFontFamily}
	}
	pdf.AddUTF8FontFromBytes(unicodeFontFamily, "B", f.bold)
	if pdf.Err() {
		// Bold is optional; SetFont(..., "B", ...) then uses the regular face.
		pdf.ClearError()
		pdf.AddUTF8FontFromBytes(unicodeFontFamily, "B", f.regular)
	}
	return textFont{family: unicodeFontFamily, glyphs: f.glyphs}
}

// text flattens control whitespace and replaces characters the font
// cannot draw with '?'.
func (t textFont) text(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	s = strings.TrimSpace(s)

	var buf sfnt.Buffer
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if t.covers(&buf, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

func (t textFont) covers(buf *sfnt.Buffer, r rune) bool {
	if t.glyphs == nil {
		return r >= 32 && r <= 126
	}
	idx, err := t.glyphs.GlyphIndex(buf, r)
	return err == nil && idx != 0
}
