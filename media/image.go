package media

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

// Attachments go out over SMTP; anything larger than this per side gets
// downscaled before mailing. Originals in the store stay untouched.
const maxAttachmentSide = 1600

// MaxAttachmentBytes caps what gets read for a mail attachment. Blobs
// over the cap are dropped rather than truncated.
const MaxAttachmentBytes int64 = 20 * 1024 * 1024

// DownscaleForMail resizes the image so the longest side is at most
// maxAttachmentSide and re-encodes it as JPEG. Images already within
// bounds are returned byte-identical: no resize means no re-encode, so
// they never pick up an extra lossy generation. A payload that does not
// decode as an image is also returned unchanged.
func DownscaleForMail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxAttachmentSide && h <= maxAttachmentSide {
		return data, nil
	}

	if w >= h {
		img = imaging.Resize(img, maxAttachmentSide, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxAttachmentSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadAllLimited reads at most limit+1 bytes so callers can detect
// oversized payloads without unbounded buffering.
func ReadAllLimited(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit+1))
}
