package view

import (
	"context"
	"sync"

	"schoolmon/internal/model"
)

type Stats struct {
	Total    int
	Healthy  int
	Warning  int
	Critical int
}

// Summarize counts devices per status. Unknown statuses only add to Total.
func Summarize(devices []model.Device) Stats {
	var s Stats
	for _, d := range devices {
		s.Total++
		switch d.Status {
		case model.StatusHealthy:
			s.Healthy++
		case model.StatusWarning:
			s.Warning++
		case model.StatusCritical:
			s.Critical++
		}
	}
	return s
}

type DetailState struct {
	School  *model.School
	Devices []model.Device
	Loading bool
	Err     error
}

type SchoolDetail struct {
	api      API
	nav      Navigator
	mu       sync.Mutex
	state    DetailState
	onChange func()
}

func NewSchoolDetail(api API, nav Navigator) *SchoolDetail {
	return &SchoolDetail{api: api, nav: nav}
}

func (d *SchoolDetail) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Load fetches the school and then its devices. The device call is skipped
// when the school lookup fails.
func (d *SchoolDetail) Load(ctx context.Context, schoolID string) error {
	d.mu.Lock()
	d.state = DetailState{Loading: true}
	fn := d.onChange
	d.mu.Unlock()
	notify(fn)

	err := d.load(ctx, schoolID)

	d.mu.Lock()
	d.state.Loading = false
	d.state.Err = err
	fn = d.onChange
	d.mu.Unlock()

	if model.IsAuthRequired(err) && d.nav != nil {
		d.nav.ToLogin()
	}
	notify(fn)
	return err
}

func (d *SchoolDetail) load(ctx context.Context, schoolID string) error {
	school, err := d.api.LoadSchool(ctx, schoolID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.state.School = &school
	d.mu.Unlock()

	devices, err := d.api.LoadSchoolDevices(ctx, schoolID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.state.Devices = devices
	d.mu.Unlock()
	return nil
}

func (d *SchoolDetail) Snapshot() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	if s.School != nil {
		school := *s.School
		s.School = &school
	}
	s.Devices = append([]model.Device(nil), d.state.Devices...)
	return s
}

func (d *SchoolDetail) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Summarize(d.state.Devices)
}
