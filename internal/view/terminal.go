package view

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/booklist"

	"github.com/microcosm-cc/bluemonday"
	"github.com/schollz/progressbar/v3"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorDim   = "\033[2m"
)

var _ booklist.View = (*Terminal)(nil)

type Option func(*Terminal)

// WithColor toggles ANSI colours.
func WithColor(on bool) Option {
	return func(t *Terminal) { t.color = on }
}

// WithSpinner toggles the animated loading indicator.
func WithSpinner(on bool) Option {
	return func(t *Terminal) { t.spin = on }
}

// Terminal renders the book list as lines of text.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	spin   bool
	policy *bluemonday.Policy

	loading      bool
	spinner      *progressbar.ProgressBar
	stopSpinner  chan struct{}
	count        int
	visible      []book.Book
	notification *booklist.Notification
	draft        book.Draft
}

func NewTerminal(out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		out:    out,
		color:  true,
		spin:   true,
		policy: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) SetLoading(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if on == t.loading {
		return
	}
	t.loading = on
	if !t.spin {
		if on {
			t.printf("%sLoading books...%s\n", t.paint(colorDim), t.paint(colorReset))
		}
		return
	}
	if on {
		t.startSpinner()
	} else {
		t.stopSpinnerLocked()
	}
}

func (t *Terminal) startSpinner() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription("Loading books"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.RenderBlank()

	stop := make(chan struct{})
	go t.spinLoop(bar, stop)
	t.spinner, t.stopSpinner = bar, stop
}

// spinLoop redraws bar under t.mu until it is stopped or replaced, so frames
// never interleave with printed lines.
func (t *Terminal) spinLoop(bar *progressbar.ProgressBar, stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if t.spinner != bar {
			t.mu.Unlock()
			return
		}
		_ = bar.Add(1)
		t.mu.Unlock()
	}
}

// stopSpinnerLocked erases the spinner line. The loop exits on its next
// tick without touching the output again.
func (t *Terminal) stopSpinnerLocked() {
	if t.spinner == nil {
		return
	}
	close(t.stopSpinner)
	_ = t.spinner.Finish()
	t.spinner, t.stopSpinner = nil, nil
}

func (t *Terminal) SetCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = n
	t.printf("Books: %d\n", n)
}

func (t *Terminal) ShowList(books []book.Book) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.visible = append([]book.Book(nil), books...)
	for _, b := range books {
		t.printf("  #%-4d %s  %sby %s%s\n",
			b.ID, t.clean(b.Title), t.paint(colorDim), t.clean(b.Author), t.paint(colorReset))
	}
}

func (t *Terminal) ShowEmpty() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.visible = nil
	t.printf("  No books yet. Use \"add\" to create one.\n")
}

func (t *Terminal) ShowListError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.visible = nil
	t.printf("  %s! Failed to load books. Try \"reload\".%s\n", t.paint(colorRed), t.paint(colorReset))
}

func (t *Terminal) ShowNotification(n booklist.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.notification = &n
	tag, color := "ok", colorGreen
	if n.Kind == booklist.KindError {
		tag, color = "error", colorRed
	}
	t.printf("%s[%s]%s %s\n", t.paint(color), tag, t.paint(colorReset), n.Message)
}

// HideNotification only forgets the message; printed lines stay on screen.
func (t *Terminal) HideNotification() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notification = nil
}

func (t *Terminal) ResetForm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = book.Draft{}
}

// SaveDraft keeps the form input until ResetForm is called.
func (t *Terminal) SaveDraft(title, author string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = book.Draft{Title: title, Author: author}
}

func (t *Terminal) Draft() book.Draft {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Visible returns the rows of the last rendered list.
func (t *Terminal) Visible() []book.Book {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]book.Book(nil), t.visible...)
}

func (t *Terminal) Notification() *booklist.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.notification == nil {
		return nil
	}
	n := *t.notification
	return &n
}

// clean strips markup the API may have stored and flattens line breaks.
func (t *Terminal) clean(s string) string {
	s = html.UnescapeString(t.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func (t *Terminal) paint(code string) string {
	if !t.color {
		return ""
	}
	return code
}

// printf writes a line of content. The first content of a load replaces the
// spinner, which is not redrawn below it.
func (t *Terminal) printf(format string, args ...any) {
	t.stopSpinnerLocked()
	fmt.Fprintf(t.out, format, args...)
}
