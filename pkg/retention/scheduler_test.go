package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTarget struct {
	name  string
	n     int
	err   error
	calls atomic.Int32
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Prune(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler()

	if err := s.Add("0 3 * * *", &fakeTarget{name: "a"}); err != nil {
		t.Errorf("Add() valid schedule error = %v", err)
	}
	if err := s.Add("", &fakeTarget{name: "b"}); err != nil {
		t.Errorf("Add() empty schedule error = %v", err)
	}
	if err := s.Add("not a schedule", &fakeTarget{name: "c"}); err == nil {
		t.Error("Add() invalid schedule error = nil")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	ok := &fakeTarget{name: "cache.memory", n: 3}
	broken := &fakeTarget{name: "replay", err: errors.New("locked")}
	_ = s.Add("", ok)
	_ = s.Add("0 3 * * *", broken)

	results, err := s.RunOnce(context.Background())
	if err == nil {
		t.Error("RunOnce() error = nil, want joined target error")
	}
	if results["cache.memory"] != 3 {
		t.Errorf("results = %v, want cache.memory=3", results)
	}
	if _, found := results["replay"]; found {
		t.Error("failed target reported a result")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	target := &fakeTarget{name: "cache.sqlite"}
	_ = s.Add("0 * * * *", target)
	_ = s.Add("", &fakeTarget{name: "unscheduled"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start() error = nil")
	}
	if err := s.Add("0 * * * *", &fakeTarget{name: "late"}); err == nil {
		t.Error("Add() on running scheduler error = nil")
	}

	next := s.NextRun("cache.sqlite")
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}
	if s.NextRun("unscheduled") != nil {
		t.Error("NextRun() for unscheduled target is not nil")
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}
