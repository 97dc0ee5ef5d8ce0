package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"vyasaquant/pkg/core/calc"
	"vyasaquant/pkg/core/pipeline"
)

type fakeRunner struct {
	release chan struct{}
	err     error
}

func (f *fakeRunner) Analyze(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{
		Symbol:         req.Symbol,
		Recommendation: calc.Recommendation{Symbol: req.Symbol, Decision: calc.DecisionBuy},
	}, nil
}

func waitForDone(t *testing.T, m *Manager, id string) Session {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if s, ok := m.Get(id); ok && s.Status != StatusRunning {
			return s
		}
		select {
		case <-deadline:
			t.Fatal("session never finished")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartAndPoll(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	m := NewManager(runner)

	id := m.Start(pipeline.Request{Symbol: "HAL"})
	s, ok := m.Get(id)
	if !ok || s.Status != StatusRunning {
		t.Fatalf("session = %+v, want running", s)
	}
	if len(m.Active()) != 1 {
		t.Errorf("Active() = %v, want one running session", m.Active())
	}

	close(runner.release)
	s = waitForDone(t, m, id)
	if s.Status != StatusCompleted {
		t.Errorf("Status = %s, want completed (err=%s)", s.Status, s.Error)
	}
	if s.Result == nil || s.Result.Symbol != "HAL" {
		t.Errorf("Result = %+v", s.Result)
	}
}

func TestFailedRunIsReported(t *testing.T) {
	m := NewManager(&fakeRunner{err: errors.New("ticker not found")})

	id := m.Start(pipeline.Request{CompanyName: "No Such Company"})
	s := waitForDone(t, m, id)
	if s.Status != StatusFailed {
		t.Errorf("Status = %s, want failed", s.Status)
	}
	if s.Error != "ticker not found" {
		t.Errorf("Error = %q", s.Error)
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager(&fakeRunner{})
	if _, ok := m.Get("not-a-session"); ok {
		t.Error("unknown session should not be found")
	}
}
