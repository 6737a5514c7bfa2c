package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindCodesRoundTrip(t *testing.T) {
	cases := map[ErrorKind]string{
		KindAuthFailed:     "AUTH_FAILED",
		KindAuthRequired:   "AUTH_REQUIRED",
		KindNotFound:       "NOT_FOUND",
		KindScanRejected:   "SCAN_REJECTED",
		KindInvalidRequest: "INVALID_REQUEST",
		KindInternal:       "SERVER_ERROR",
	}
	for kind, code := range cases {
		if got := kind.Code(); got != code {
			t.Fatalf("expected %s, got %s", code, got)
		}
		if got := KindFromCode(code); got != kind {
			t.Fatalf("expected kind %v for %s, got %v", kind, code, got)
		}
	}
	if KindFromCode("nope") != KindUnknown {
		t.Fatalf("expected unknown kind for unrecognised code")
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("load schools: %w", NewError(KindAuthRequired, "Authentication required"))
	if !IsAuthRequired(err) {
		t.Fatalf("expected wrapped auth error to be detected")
	}
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("expected kinds to differ")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for plain error")
	}
}

func TestScanResultErr(t *testing.T) {
	if err := (ScanResult{Success: true}).Err(); err != nil {
		t.Fatalf("expected nil error for success, got %v", err)
	}
	err := (ScanResult{Success: false}).Err()
	if KindOf(err) != KindScanRejected || err.Error() != MsgInvalidQRCode {
		t.Fatalf("unexpected rejection error %v", err)
	}
}

func TestDeviceStatusValid(t *testing.T) {
	for _, status := range DeviceStatuses {
		if !status.Valid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if DeviceStatus("blue").Valid() {
		t.Fatalf("expected blue to be invalid")
	}
}
