package view

import (
	"context"
	"testing"

	"schoolmon/internal/db"
	"schoolmon/internal/model"
)

func TestSchoolListLoadsAllPagesOnce(t *testing.T) {
	api := newCountingAPI(loggedInClient(t))
	nav := &fakeNav{}
	list := NewSchoolList(api, nav, 5)
	ctx := context.Background()

	initial := list.Snapshot()
	if initial.Page != 1 || !initial.HasMore || initial.Loading || len(initial.Items) != 0 {
		t.Fatalf("unexpected initial state %+v", initial)
	}

	for i := 0; i < 3; i++ {
		if err := list.FetchNext(ctx); err != nil {
			t.Fatalf("fetch %d error: %v", i+1, err)
		}
	}
	seed := db.SeedSchools()
	state := list.Snapshot()
	if len(state.Items) != 15 || state.HasMore || state.Page != 4 {
		t.Fatalf("unexpected state after three fetches: %d items, hasMore=%v page=%d", len(state.Items), state.HasMore, state.Page)
	}
	seen := make(map[string]bool)
	for i, school := range state.Items {
		if seen[school.ID] {
			t.Fatalf("duplicate school %s", school.ID)
		}
		seen[school.ID] = true
		if school.ID != seed[i].ID {
			t.Fatalf("expected %s at %d, got %s", seed[i].ID, i, school.ID)
		}
	}

	if err := list.FetchNext(ctx); err != nil {
		t.Fatalf("expected no-op fetch, got %v", err)
	}
	if api.count("LoadSchools") != 3 {
		t.Fatalf("expected 3 API calls, got %d", api.count("LoadSchools"))
	}
}

func TestSchoolListSingleFetchInFlight(t *testing.T) {
	api := newCountingAPI(loggedInClient(t))
	api.entered = make(chan struct{})
	api.release = make(chan struct{})
	list := NewSchoolList(api, &fakeNav{}, 5)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- list.FetchNext(ctx) }()
	<-api.entered

	if !list.Snapshot().Loading {
		t.Fatalf("expected loading state while fetch is in flight")
	}
	if err := list.FetchNext(ctx); err != nil {
		t.Fatalf("expected concurrent fetch to be a no-op, got %v", err)
	}
	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if api.count("LoadSchools") != 1 {
		t.Fatalf("expected one API call, got %d", api.count("LoadSchools"))
	}
	if state := list.Snapshot(); state.Loading || len(state.Items) != 5 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestSchoolListAuthRequired(t *testing.T) {
	client := newClient(t)
	nav := &fakeNav{}
	list := NewSchoolList(client, nav, 5)
	ctx := context.Background()

	err := list.FetchNext(ctx)
	if !model.IsAuthRequired(err) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
	if logins, _, _ := nav.counts(); logins != 1 {
		t.Fatalf("expected redirect to login, got %d", logins)
	}
	state := list.Snapshot()
	if state.Err == nil || state.Page != 1 || !state.HasMore {
		t.Fatalf("expected failed fetch to leave paging untouched, got %+v", state)
	}

	if _, err := client.Authorize(ctx, "demo", "ACLZBw6QCZ"); err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if err := list.Retry(ctx); err != nil {
		t.Fatalf("retry error: %v", err)
	}
	state = list.Snapshot()
	if state.Err != nil || len(state.Items) != 5 || state.Page != 2 {
		t.Fatalf("unexpected state after retry %+v", state)
	}
}

func TestSentinelVisible(t *testing.T) {
	s := Sentinel{Threshold: 2}
	cases := []struct {
		last, count int
		expect      bool
	}{
		{-1, 0, true},
		{4, 5, true},
		{2, 5, true},
		{1, 5, false},
		{0, 15, false},
	}
	for _, c := range cases {
		if got := s.Visible(c.last, c.count); got != c.expect {
			t.Fatalf("Visible(%d, %d): expected %v", c.last, c.count, c.expect)
		}
	}
}
