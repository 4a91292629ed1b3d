package booklist

import (
	"context"
	"sync"
	"time"

	"bookshelf/internal/book"
)

// screen is a View that remembers what is visible.
type screen struct {
	mu sync.Mutex

	loading       bool
	loadingSeen   []bool
	count         int
	listVisible   bool
	emptyVisible  bool
	listError     bool
	items         []book.Book
	notification  *Notification
	notifications []Notification
	formResets    int
}

func (s *screen) SetLoading(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = on
	s.loadingSeen = append(s.loadingSeen, on)
	if on {
		s.listVisible = false
		s.emptyVisible = false
	}
}

func (s *screen) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = n
}

func (s *screen) ShowList(books []book.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]book.Book(nil), books...)
	s.listVisible = true
	s.emptyVisible = false
	s.listError = false
}

func (s *screen) ShowEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.listVisible = false
	s.emptyVisible = true
	s.listError = false
}

func (s *screen) ShowListError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.listVisible = true
	s.listError = true
}

func (s *screen) ShowNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notification = &n
	s.notifications = append(s.notifications, n)
}

func (s *screen) HideNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notification = nil
}

func (s *screen) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formResets++
}

func (s *screen) lastNotification() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notifications) == 0 {
		return Notification{}
	}
	return s.notifications[len(s.notifications)-1]
}

// manualTimers collects scheduled dismissals so tests fire them explicitly.
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{delay: d, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// fire runs the i-th scheduled dismissal unless it was stopped.
func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	t := m.pending[i]
	m.mu.Unlock()
	if !t.stopped {
		t.fn()
	}
}

func (m *manualTimers) scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func confirmAlways(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) {
		return answer, nil
	})
}
