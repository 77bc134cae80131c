package booth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/lumabooth/luma/pkg/filter"
	"github.com/lumabooth/luma/pkg/pool"
)

const pngPrefix = "data:image/png;base64,"

// EncodePNGDataURI renders a buffer into the data-URI payload stored on
// a memory record.
func EncodePNGDataURI(buf *filter.Buffer) (string, error) {
	if err := buf.Validate(); err != nil {
		return "", err
	}
	scratch := bytes.NewBuffer(pool.GetBytes())
	defer pool.PutBytes(scratch.Bytes())

	if err := png.Encode(scratch, buf.Image()); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(scratch.Bytes()), nil
}

// EncodeJPEG renders a buffer as JPEG bytes at the given quality, for
// file export from the CLI.
func EncodeJPEG(buf *filter.Buffer, quality int) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, buf.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeDataURI parses a data-URI (or raw base64) image payload back
// into a pixel buffer.
func DecodeDataURI(payload string) (*filter.Buffer, error) {
	raw := payload
	if i := strings.Index(raw, ","); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return filter.FromImage(img), nil
}
