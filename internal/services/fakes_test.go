package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/poll"
	"github.com/tbourn/go-campaign-backend/internal/prompt"
)

// ----- Fakes -----

type fakeLLM struct {
	mu    sync.Mutex
	calls []prompt.Composed
	out   string
	err   error
}

func (f *fakeLLM) Complete(_ context.Context, p prompt.Composed) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return "", f.err
	}
	if f.out == "" {
		return p.Idea, nil
	}
	return f.out, nil
}

type fakeSubmitter struct {
	prompts []string
	id      string
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, p string) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.id, f.err
}

// scriptedTasks returns one snapshot per call; the last entry repeats.
type scriptedTasks struct {
	mu     sync.Mutex
	script []domain.ImageTask
	errAt  int // 1-based call that fails with err; 0 disables
	err    error
	calls  int
	block  chan struct{} // when set, Status waits on it
}

func (s *scriptedTasks) Status(ctx context.Context, id string) (domain.ImageTask, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return domain.ImageTask{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.errAt > 0 && s.calls == s.errAt {
		return domain.ImageTask{}, s.err
	}
	i := s.calls - 1
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	t := s.script[i]
	t.ID = id
	return t, nil
}

func (s *scriptedTasks) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func pending() domain.ImageTask { return domain.ImageTask{Status: domain.TaskPending} }

func completed(urls ...string) domain.ImageTask {
	t := domain.ImageTask{Status: domain.TaskCompleted}
	for _, u := range urls {
		t.Artifacts = append(t.Artifacts, domain.Artifact{URL: u})
	}
	return t
}

func newPoller(tasks TaskStatuser, maxAttempts int) *TaskPoller {
	p := NewTaskPoller(tasks, nil, poll.Policy{Interval: 2 * time.Second, MaxAttempts: maxAttempts}, 4)
	p.Clock = instantClock{}
	return p
}

func composer(t *testing.T) *prompt.Composer {
	t.Helper()
	c, err := prompt.New(prompt.DefaultBrand)
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	return c
}
