package client

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// File is an in-memory file handle: a name, a MIME type, and the raw bytes.
type File struct {
	Name string
	MIME string
	Data []byte
}

// NormalizedFile is the result of Normalize. Passthrough is true when the
// input was returned unmodified, either because no work was needed or
// because normalization failed and the best-effort contract kicked in.
// Callers must never treat a passthrough as an error.
type NormalizedFile struct {
	File
	Passthrough bool
}

func passthrough(f File) NormalizedFile {
	return NormalizedFile{File: f, Passthrough: true}
}

// Normalize bounds an image to maxWidth x maxHeight, preserving aspect
// ratio, and re-encodes it as JPEG at the given quality (0,1]. Non-image
// inputs and images already within bounds are returned byte-for-byte.
// Decode or encode failures also resolve to the original file: a bad photo
// must never block item creation.
func Normalize(f File, maxWidth, maxHeight int, quality float64) NormalizedFile {
	if !strings.HasPrefix(f.MIME, "image/") {
		return passthrough(f)
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return passthrough(f)
	}

	src, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return passthrough(f)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return passthrough(f)
	}

	// Proportional scale-down; the larger overshoot wins. Never upscales.
	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: q}); err != nil {
		return passthrough(f)
	}

	return NormalizedFile{
		File: File{
			Name: jpegName(f.Name),
			MIME: "image/jpeg",
			Data: out.Bytes(),
		},
	}
}

func jpegName(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	return name + ".jpg"
}
