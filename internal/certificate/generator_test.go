package certificate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var serialPattern = regexp.MustCompile(`^Serial: (\d{5})$`)

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// watermarkPixels counts pixels tinted by the translucent blue watermark
// over the white background.
func watermarkPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := rgbaAt(img, x, y)
			if c.B == 255 && c.R == c.G && c.R >= 200 && c.R < 255 {
				n++
			}
		}
	}
	return n
}

func TestGenerateSerial(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 200; i++ {
		asset := g.Generate(i%2 == 0)
		m := serialPattern.FindStringSubmatch(asset.Serial)
		if m == nil {
			t.Fatalf("serial %q does not match pattern", asset.Serial)
		}
		n, _ := strconv.Atoi(m[1])
		if n < 10000 || n > 99999 {
			t.Fatalf("serial number %d outside [10000, 99999]", n)
		}
	}
}

func TestNewSerialBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 10000; i++ {
		s := NewSerial(r)
		n, err := strconv.Atoi(strings.TrimPrefix(s, "Serial: "))
		if err != nil || n < minSerial || n > maxSerial {
			t.Fatalf("NewSerial() = %q", s)
		}
	}
}

func TestGenerateLayout(t *testing.T) {
	g := NewGenerator()
	for _, genuine := range []bool{true, false} {
		asset := g.Generate(genuine)
		if asset.IsGenuine != genuine {
			t.Errorf("IsGenuine = %v, want %v", asset.IsGenuine, genuine)
		}

		img := asset.Image
		if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
			t.Fatalf("bounds = %v, want %dx%d", b, Width, Height)
		}

		checks := []struct {
			name string
			x, y int
			want color.RGBA
		}{
			{"outside border", 5, 5, white},
			{"border outer edge", 10, 200, gold},
			{"border inner edge", 12, 200, gold},
			{"inside border", 14, 200, white},
			{"below border", 300, 395, white},
			{"right border", 590, 200, gold},
			{"bottom border", 300, 390, gold},
			{"qr box outline", 450, 325, black},
			{"qr box fill", 452, 302, lightGray},
		}
		for _, c := range checks {
			if got := rgbaAt(img, c.x, c.y); got != c.want {
				t.Errorf("genuine=%v %s (%d,%d) = %v, want %v", genuine, c.name, c.x, c.y, got, c.want)
			}
		}
	}
}

func TestGenerateIsOpaque(t *testing.T) {
	img := NewGenerator().Generate(true).Image
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			if a := rgbaAt(img, x, y).A; a != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, a)
			}
		}
	}
}

func TestGenerateWatermarkOnlyOnGenuine(t *testing.T) {
	g := NewGenerator()
	genuine := watermarkPixels(g.Generate(true).Image)
	fake := watermarkPixels(g.Generate(false).Image)

	if genuine <= fake+300 {
		t.Errorf("watermark pixels genuine=%d fake=%d, want genuine clearly above fake", genuine, fake)
	}
}

func TestMissingFontFileKeepsGoRegular(t *testing.T) {
	g := NewGenerator(WithFontFile(filepath.Join(t.TempDir(), "missing.ttf")))
	if g.font == nil {
		t.Fatal("missing font file should keep the embedded Go Regular font")
	}
	if _, ok := g.face(DefaultFontSize).(*basicfont.Face); ok {
		t.Error("face fell back to the bitmap font")
	}
}

func TestGenerateFallsBackOnUnparsableFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(WithFontFile(path))
	if g.font != nil {
		t.Fatal("unparsable font file should leave no scalable font")
	}

	genuine := g.Generate(true)
	fake := g.Generate(false)
	if b := genuine.Image.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("bounds = %v", b)
	}
	if !serialPattern.MatchString(genuine.Serial) {
		t.Errorf("serial = %q", genuine.Serial)
	}
	if watermarkPixels(genuine.Image) <= watermarkPixels(fake.Image) {
		t.Error("fallback font should still render the watermark")
	}
}

func TestGenerateInvalidFontData(t *testing.T) {
	if f := parseFont([]byte("not a font")); f != nil {
		t.Fatal("parseFont accepted garbage")
	}
}

func TestGenerateWithRandIsDeterministic(t *testing.T) {
	g := NewGenerator()
	a := g.GenerateWithRand(rand.New(rand.NewPCG(3, 4)), true)
	b := g.GenerateWithRand(rand.New(rand.NewPCG(3, 4)), true)
	if a.Serial != b.Serial {
		t.Errorf("serials differ: %q vs %q", a.Serial, b.Serial)
	}

	pa, err := PNGBytes(a)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := PNGBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pa, pb) {
		t.Error("identical inputs rendered different images")
	}
}

func TestGenerateConcurrent(t *testing.T) {
	g := NewGenerator()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(genuine bool) {
			defer wg.Done()
			if a := g.Generate(genuine); a.Image == nil {
				t.Error("nil image")
			}
		}(i%2 == 0)
	}
	wg.Wait()
}

func TestEncodePNG(t *testing.T) {
	asset := NewGenerator().Generate(false)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, asset); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("decoded bounds = %v", b)
	}

	if err := EncodePNG(&buf, nil); err == nil {
		t.Error("EncodePNG(nil) should fail")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(true); got != "genuine_certificate.png" {
		t.Errorf("Filename(true) = %q", got)
	}
	if got := Filename(false); got != "fake_certificate.png" {
		t.Errorf("Filename(false) = %q", got)
	}
}

func TestLayoutFitsCanvas(t *testing.T) {
	generators := map[string]*Generator{
		"go regular": NewGenerator(),
		"bitmap":     {fontSize: DefaultFontSize, watermarkFontSize: DefaultWatermarkFontSize},
	}
	for name, g := range generators {
		for _, genuine := range []bool{true, false} {
			lay := g.layout(genuine, "Serial: 99999")

			for _, p := range lay.all() {
				if !p.bounds.In(contentRect) {
					t.Errorf("%s genuine=%v: %q spans %v, outside %v", name, genuine, p.text, p.bounds, contentRect)
				}
			}

			if lay.serial.bounds.Max.X > qrRect.Min.X {
				t.Errorf("%s: serial spans x=%d..%d, QR box starts at x=%d",
					name, lay.serial.bounds.Min.X, lay.serial.bounds.Max.X, qrRect.Min.X)
			}

			c := lay.caption.bounds
			if !c.In(qrRect.Inset(1)) {
				t.Errorf("%s: caption %v not inside QR box %v", name, c, qrRect)
			}
			left, right := c.Min.X-qrRect.Min.X, qrRect.Max.X-c.Max.X
			top, bottom := c.Min.Y-qrRect.Min.Y, qrRect.Max.Y-c.Max.Y
			if d := left - right; d < -1 || d > 1 {
				t.Errorf("%s: caption off-center horizontally: left %d right %d", name, left, right)
			}
			if d := top - bottom; d < -1 || d > 1 {
				t.Errorf("%s: caption off-center vertically: top %d bottom %d", name, top, bottom)
			}

			if genuine != (len(lay.marks) == 2) {
				t.Errorf("%s genuine=%v: %d watermark stamps", name, genuine, len(lay.marks))
			}
			lay.close()
		}
	}
}

func TestSerialDigitsAreVisible(t *testing.T) {
	g := NewGenerator()
	r := rand.New(rand.NewPCG(9, 9))
	asset := g.GenerateWithRand(r, false)

	lay := g.layout(false, asset.Serial)
	defer lay.close()

	// The digits are the last five characters of the serial.
	prefix := font.MeasureString(lay.serial.face, "Serial: ").Ceil()
	digits := image.Rect(lay.serial.bounds.Min.X+prefix, lay.serial.bounds.Min.Y, lay.serial.bounds.Max.X, lay.serial.bounds.Max.Y)

	dark := 0
	for y := digits.Min.Y; y < digits.Max.Y; y++ {
		for x := digits.Min.X; x < digits.Max.X; x++ {
			if c := rgbaAt(asset.Image, x, y); c.R < 128 && c.G < 128 && c.B < 128 {
				dark++
			}
		}
	}
	if dark < 50 {
		t.Errorf("only %d dark pixels in serial digits box %v", dark, digits)
	}
}
