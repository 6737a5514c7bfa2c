package view

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"schoolmon/internal/model"
	"schoolmon/internal/qr"
)

// RedirectDelay is how long the confirmation stays up before returning to
// the school.
const RedirectDelay = 2 * time.Second

var ErrEmptyCode = errors.New("empty code")

type ScanPhase int

const (
	ScanIdle ScanPhase = iota
	ScanScanning
	ScanSubmitting
	ScanConfirmed
	ScanFailed
)

type CameraStatus int

const (
	CameraUnknown CameraStatus = iota
	CameraReady
	CameraPermissionDenied
	CameraNotFound
	CameraInUse
	CameraFailed
)

const (
	msgCameraPermission = "Camera permission denied. Please enable camera access in your settings."
	msgCameraNotFound   = "No camera found on this device."
	msgCameraInUse      = "Camera is already in use by another application."
	msgCameraFailed     = "Camera error occurred"
)

// Camera opens a video stream. Closing the stream releases the device.
type Camera interface {
	Open(ctx context.Context) (io.Closer, error)
}

// ClassifyCameraError maps a camera failure to a status and a user-facing
// message by matching well-known substrings of the error text.
func ClassifyCameraError(err error) (CameraStatus, string) {
	if err == nil {
		return CameraReady, ""
	}
	msg := err.Error()
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("Permission denied", "NotAllowedError", "permission denied"):
		return CameraPermissionDenied, msgCameraPermission
	case has("NotFoundError", "DevicesNotFoundError", "no such file or directory"):
		return CameraNotFound, msgCameraNotFound
	case has("NotReadableError", "device or resource busy"):
		return CameraInUse, msgCameraInUse
	}
	if msg == "" {
		msg = msgCameraFailed
	}
	return CameraFailed, msg
}

type ScanState struct {
	Phase         ScanPhase
	Camera        CameraStatus
	CameraMessage string
	ManualCode    string
	Code          string
	DeviceID      string
	Err           error
}

// ScanFlow registers a device of one school by QR code, either detected by
// a scanner or typed in by hand.
type ScanFlow struct {
	api      API
	nav      Navigator
	clock    Clock
	schoolID string

	mu       sync.Mutex
	state    ScanState
	redirect Timer
	onChange func()
}

func NewScanFlow(api API, nav Navigator, clock Clock, schoolID string) *ScanFlow {
	if clock == nil {
		clock = RealClock()
	}
	return &ScanFlow{api: api, nav: nav, clock: clock, schoolID: schoolID}
}

func (f *ScanFlow) SchoolID() string {
	return f.schoolID
}

func (f *ScanFlow) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *ScanFlow) update(mutate func(*ScanState)) {
	f.mu.Lock()
	mutate(&f.state)
	fn := f.onChange
	f.mu.Unlock()
	notify(fn)
}

// ProbeCamera opens and immediately closes a stream to learn whether the
// camera can be used.
func (f *ScanFlow) ProbeCamera(ctx context.Context, cam Camera) CameraStatus {
	stream, err := cam.Open(ctx)
	if err == nil {
		_ = stream.Close()
	}
	status, msg := ClassifyCameraError(err)
	f.update(func(s *ScanState) {
		s.Camera = status
		s.CameraMessage = msg
	})
	return status
}

func (f *ScanFlow) StartScanning() {
	f.update(func(s *ScanState) {
		if s.Phase == ScanIdle || s.Phase == ScanFailed {
			s.Phase = ScanScanning
			s.Err = nil
		}
	})
}

// OnDetect submits the first detection and stops scanning. Detections that
// arrive while not scanning are dropped.
func (f *ScanFlow) OnDetect(ctx context.Context, detections []qr.Detection) error {
	if len(detections) == 0 {
		return nil
	}
	f.mu.Lock()
	if f.state.Phase != ScanScanning {
		f.mu.Unlock()
		return nil
	}
	f.state.Phase = ScanIdle
	f.mu.Unlock()
	return f.Submit(ctx, detections[0].RawValue)
}

func (f *ScanFlow) SetManualCode(code string) {
	f.update(func(s *ScanState) { s.ManualCode = code })
}

func (f *ScanFlow) CanSubmitManual() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.TrimSpace(f.state.ManualCode) != ""
}

func (f *ScanFlow) SubmitManual(ctx context.Context) error {
	f.mu.Lock()
	code := strings.TrimSpace(f.state.ManualCode)
	f.mu.Unlock()
	if code == "" {
		return ErrEmptyCode
	}
	return f.Submit(ctx, code)
}

// Submit sends code to the API. A rejected code is recorded and not
// retried; an accepted one schedules the return to the school.
func (f *ScanFlow) Submit(ctx context.Context, code string) error {
	f.mu.Lock()
	if f.state.Phase == ScanSubmitting || f.state.Phase == ScanConfirmed {
		f.mu.Unlock()
		return nil
	}
	f.state.Phase = ScanSubmitting
	f.state.Err = nil
	fn := f.onChange
	f.mu.Unlock()
	notify(fn)

	if !f.api.IsAuthenticated() {
		f.fail(model.ErrAuthRequired)
		f.nav.ToLogin()
		return model.ErrAuthRequired
	}

	result, err := f.api.ScanQRCode(ctx, code)
	if err != nil {
		f.fail(err)
		if model.IsAuthRequired(err) {
			f.nav.ToLogin()
		}
		return err
	}
	if rejected := result.Err(); rejected != nil {
		f.fail(rejected)
		return rejected
	}

	f.mu.Lock()
	f.state.Phase = ScanConfirmed
	f.state.Code = code
	f.state.DeviceID = result.DeviceID
	fn = f.onChange
	f.mu.Unlock()

	timer := f.clock.AfterFunc(RedirectDelay, f.finish)
	f.mu.Lock()
	f.redirect = timer
	f.mu.Unlock()
	notify(fn)
	return nil
}

func (f *ScanFlow) fail(err error) {
	f.update(func(s *ScanState) {
		s.Phase = ScanFailed
		s.Err = err
	})
}

func (f *ScanFlow) finish() {
	f.mu.Lock()
	confirmed := f.state.Phase == ScanConfirmed
	f.redirect = nil
	f.mu.Unlock()
	if confirmed {
		f.nav.ToSchool(f.schoolID)
	}
}

// Reset returns to idle so the user can try again.
func (f *ScanFlow) Reset() {
	f.update(func(s *ScanState) {
		s.Phase = ScanIdle
		s.Err = nil
		s.Code = ""
		s.DeviceID = ""
	})
}

// Close cancels a pending redirect.
func (f *ScanFlow) Close() {
	f.mu.Lock()
	if f.redirect != nil {
		f.redirect.Stop()
		f.redirect = nil
	}
	f.mu.Unlock()
}

func (f *ScanFlow) Snapshot() ScanState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
