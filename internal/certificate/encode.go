package certificate

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/factchecker/certverify/internal/models"
)

// EncodePNG writes the certificate image as PNG.
func EncodePNG(w io.Writer, asset *models.CertificateAsset) error {
	if asset == nil || asset.Image == nil {
		return fmt.Errorf("certificate has no image")
	}
	if err := png.Encode(w, asset.Image); err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}
	return nil
}

// PNGBytes returns the certificate image encoded as PNG.
func PNGBytes(asset *models.CertificateAsset) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, asset); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
