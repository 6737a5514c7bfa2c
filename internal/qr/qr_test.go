package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func encodeQR(t *testing.T, payload string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		t.Fatalf("png error: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	detections, err := DecodeImage(bytes.NewReader(encodeQR(t, "DEVICE:101")))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(detections) != 1 || detections[0].RawValue != "DEVICE:101" {
		t.Fatalf("unexpected detections %+v", detections)
	}
}

func TestDecodeImageWithoutCode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, color.Gray{Y: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png error: %v", err)
	}
	if _, err := DecodeImage(&buf); !errors.Is(err, ErrNoCode) {
		t.Fatalf("expected ErrNoCode, got %v", err)
	}
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.png")
	if err := os.WriteFile(path, encodeQR(t, "DEVICE:303"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	detections, err := DecodeFile(path)
	if err != nil || detections[0].RawValue != "DEVICE:303" {
		t.Fatalf("unexpected result %+v (%v)", detections, err)
	}
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDeviceCamera(t *testing.T) {
	missing := DeviceCamera{Path: filepath.Join(t.TempDir(), "video9")}
	if _, err := missing.Open(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "video0")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}
	stream, err := DeviceCamera{Path: path}.Open(context.Background())
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	_ = stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (DeviceCamera{Path: path}).Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
