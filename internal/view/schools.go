package view

import (
	"context"
	"sync"

	"schoolmon/internal/model"
)

type ListState struct {
	Items   []model.School
	Page    int
	HasMore bool
	Loading bool
	Err     error
}

// SchoolList accumulates pages of schools for infinite scrolling. At most
// one fetch is in flight at a time.
type SchoolList struct {
	api      API
	nav      Navigator
	limit    int
	mu       sync.Mutex
	state    ListState
	onChange func()
}

func NewSchoolList(api API, nav Navigator, limit int) *SchoolList {
	return &SchoolList{
		api:   api,
		nav:   nav,
		limit: limit,
		state: ListState{Items: []model.School{}, Page: 1, HasMore: true},
	}
}

func (l *SchoolList) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// FetchNext loads the next page. It is a no-op while a fetch is running or
// once the last page has been seen, and returns the error of the fetch it
// performed, if any.
func (l *SchoolList) FetchNext(ctx context.Context) error {
	l.mu.Lock()
	if l.state.Loading || !l.state.HasMore {
		l.mu.Unlock()
		return nil
	}
	l.state.Loading = true
	page := l.state.Page
	fn := l.onChange
	l.mu.Unlock()
	notify(fn)

	resp, err := l.api.LoadSchools(ctx, page, l.limit)

	l.mu.Lock()
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
	} else {
		l.state.Items = append(l.state.Items, resp.Data...)
		l.state.HasMore = resp.HasMore
		l.state.Page = page + 1
		l.state.Err = nil
	}
	fn = l.onChange
	l.mu.Unlock()

	if model.IsAuthRequired(err) && l.nav != nil {
		l.nav.ToLogin()
	}
	notify(fn)
	return err
}

func (l *SchoolList) Retry(ctx context.Context) error {
	l.mu.Lock()
	l.state.Err = nil
	l.mu.Unlock()
	return l.FetchNext(ctx)
}

func (l *SchoolList) Snapshot() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Items = append([]model.School(nil), l.state.Items...)
	return s
}

// DefaultSentinelThreshold is how many rows before the end a fetch starts.
const DefaultSentinelThreshold = 2

// Sentinel reports when the end of the rendered list is close enough to the
// viewport that the next page should load.
type Sentinel struct {
	Threshold int
}

// Visible reports whether lastVisible, the index of the last row on screen
// (-1 when nothing is rendered), is within Threshold rows of the end of a
// list holding count rows.
func (s Sentinel) Visible(lastVisible, count int) bool {
	return lastVisible >= count-1-s.Threshold
}
