// Package qr decodes QR codes from still images and probes local video
// devices. It supplies the detections and the camera consumed by the scan
// flow.
package qr

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode is returned when an image holds no readable QR code.
var ErrNoCode = errors.New("no QR code found")

// Detection is one decoded code. RawValue is the payload text.
type Detection struct {
	RawValue string
}

func DecodeImage(r io.Reader) ([]Detection, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("binarize image: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCode, err)
	}
	return []Detection{{RawValue: result.GetText()}}, nil
}

func DecodeFile(path string) ([]Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeImage(f)
}

// DefaultDevicePath is the first V4L2 capture node on Linux.
const DefaultDevicePath = "/dev/video0"

// DeviceCamera opens a video device node. Opening and closing it is enough
// to learn whether the device exists, is readable and is free.
type DeviceCamera struct {
	Path string
}

func (c DeviceCamera) Open(ctx context.Context) (io.Closer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := c.Path
	if path == "" {
		path = DefaultDevicePath
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}
