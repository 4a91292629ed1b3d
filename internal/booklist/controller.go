package booklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/logger"
	"bookshelf/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDismissDelay = 3 * time.Second

	ConfirmDeletePrompt = "Are you sure you want to delete this book?"

	msgFillAllFields = "Please fill in all fields"
	msgCreated       = "Book %q added successfully!"
	msgCreateFailed  = "Failed to add book"
	msgLoadFailed    = "Failed to load books"
	msgDeleted       = "Book deleted successfully"
	msgDeleteFailed  = "Failed to delete book"
)

// ErrNoRoute is returned by Dispatch for a book that is not on screen.
var ErrNoRoute = errors.New("no handler for book")

// Stopper is the part of *time.Timer the controller needs.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run asynchronously after d.
type AfterFunc func(d time.Duration, f func()) Stopper

type Option func(*Controller)

func WithDismissDelay(d time.Duration) Option {
	return func(c *Controller) { c.dismissAfter = d }
}

func WithLogger(entry *logrus.Entry) Option {
	return func(c *Controller) { c.log = entry }
}

// WithAfterFunc replaces time.AfterFunc for notification dismissal.
// f must not be run before AfterFunc returns.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = f }
}

// Controller keeps a disposable copy of the remote collection and drives a
// View from it. The cache is created by the first load, replaced wholesale by
// every successful load and dropped by Close. Network calls run outside the
// lock, so overlapping operations are neither merged nor queued.
type Controller struct {
	api     book.API
	view    View
	confirm Confirmer
	log     *logrus.Entry

	dismissAfter time.Duration
	afterFunc    AfterFunc

	mu     sync.Mutex
	books  []book.Book
	routes map[int]func(ctx context.Context) error
	state  State
	seq    uint64
	timers map[uint64]Stopper
	closed bool
}

func New(api book.API, view View, confirm Confirmer, opts ...Option) *Controller {
	c := &Controller{
		api:          api,
		view:         view,
		confirm:      confirm,
		log:          logrus.WithField("component", "booklist"),
		dismissAfter: DefaultDismissDelay,
		afterFunc: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
		routes: make(map[int]func(ctx context.Context) error),
		timers: make(map[uint64]Stopper),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the initial load.
func (c *Controller) Start(ctx context.Context) error {
	return c.LoadBooks(ctx)
}

// Close stops pending dismissals and drops the cache and the routing table.
// A closed controller no longer fills the cache or renders.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.books = nil
	c.routes = make(map[int]func(ctx context.Context) error)
}

// LoadBooks fetches the whole collection and renders it. On failure the
// cache is kept and the list is replaced by an error placeholder.
func (c *Controller) LoadBooks(ctx context.Context) error {
	ctx = withRequestID(ctx)
	log := c.entry(ctx)
	defer logger.Track(log, "load books")()

	c.setLoading(true)
	defer c.setLoading(false)

	books, err := c.api.List(ctx)
	if err != nil {
		log.WithError(err).Error("load books failed")
		c.mu.Lock()
		if !c.closed {
			c.routes = make(map[int]func(ctx context.Context) error)
			c.view.ShowListError()
		}
		c.mu.Unlock()
		c.Notify(msgLoadFailed, KindError)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.books = books
	c.state.Count = len(books)
	c.view.SetCount(len(books))
	c.renderLocked(books)
	log.WithField("count", len(books)).Debug("books loaded")
	return nil
}

// SubmitNewBook validates the form and creates the book. The form is only
// reset after the server accepted it.
func (c *Controller) SubmitNewBook(ctx context.Context, title, author string) error {
	ctx = withRequestID(ctx)
	log := c.entry(ctx)

	d := book.NewDraft(title, author)
	if err := d.Validate(); err != nil {
		log.WithError(err).Warn("create book rejected")
		c.Notify(msgFillAllFields, KindError)
		return err
	}

	if err := c.api.Create(ctx, d); err != nil {
		log.WithError(err).Error("create book failed")
		c.Notify(msgCreateFailed, KindError)
		return err
	}

	c.mu.Lock()
	c.view.ResetForm()
	c.mu.Unlock()
	c.Notify(fmt.Sprintf(msgCreated, d.Title), KindSuccess)

	if err := c.LoadBooks(ctx); err != nil {
		return fmt.Errorf("reload after create: %w", err)
	}
	return nil
}

// FilterBooks renders the cached books matching query and returns them.
func (c *Controller) FilterBooks(query string) []book.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Query = query
	filtered := append([]book.Book{}, book.Filter(c.books, query)...)
	c.renderLocked(filtered)
	return filtered
}

// DeleteBook asks for confirmation and deletes the book. Declining is a no-op.
func (c *Controller) DeleteBook(ctx context.Context, id int) error {
	ctx = withRequestID(ctx)
	log := c.entry(ctx).WithField("book_id", id)

	ok, err := c.confirm.Confirm(ctx, ConfirmDeletePrompt)
	if err != nil {
		log.WithError(err).Warn("delete confirmation failed")
		return err
	}
	if !ok {
		log.Debug("delete declined")
		return nil
	}

	if err := c.api.Delete(ctx, id); err != nil {
		log.WithError(err).Error("delete book failed")
		c.Notify(msgDeleteFailed, KindError)
		return err
	}

	c.Notify(msgDeleted, KindSuccess)
	if err := c.LoadBooks(ctx); err != nil {
		return fmt.Errorf("reload after delete: %w", err)
	}
	return nil
}

// Render shows list, or the empty placeholder when list is empty, and
// registers a delete handler for every rendered book.
func (c *Controller) Render(list []book.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked(list)
}

func (c *Controller) renderLocked(list []book.Book) {
	if c.closed {
		return
	}
	c.routes = make(map[int]func(ctx context.Context) error, len(list))
	for _, b := range list {
		id := b.ID
		c.routes[id] = func(ctx context.Context) error {
			return c.DeleteBook(ctx, id)
		}
	}

	if len(list) == 0 {
		c.state.Empty = true
		c.view.ShowEmpty()
		return
	}
	c.state.Empty = false
	c.view.ShowList(list)
}

// Dispatch runs the action registered for a rendered book.
func (c *Controller) Dispatch(ctx context.Context, id int) error {
	c.mu.Lock()
	handler, ok := c.routes[id]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w %d", ErrNoRoute, id)
	}
	return handler(ctx)
}

// Notify shows a message and hides it after the dismiss delay. Earlier
// pending hides are not cancelled, so they may hide this message early.
func (c *Controller) Notify(message string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.seq++
	n := Notification{ID: c.seq, Message: message, Kind: kind}
	c.state.Notification = &n
	c.view.ShowNotification(n)
	metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()

	id := n.ID
	c.timers[id] = c.afterFunc(c.dismissAfter, func() { c.dismiss(id) })
}

func (c *Controller) dismiss(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.timers, id)
	if c.closed {
		return
	}
	c.state.Notification = nil
	c.view.HideNotification()
}

// State returns a snapshot of the UI state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Notification != nil {
		n := *s.Notification
		s.Notification = &n
	}
	return s
}

// Books returns a copy of the cache.
func (c *Controller) Books() []book.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]book.Book(nil), c.books...)
}

func (c *Controller) setLoading(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Loading = on
	if on {
		c.state.Empty = false
	}
	c.view.SetLoading(on)
}

func (c *Controller) entry(ctx context.Context) *logrus.Entry {
	return c.log.WithField("request_id", logger.RequestID(ctx))
}

func withRequestID(ctx context.Context) context.Context {
	if logger.RequestID(ctx) != "" {
		return ctx
	}
	return logger.ContextWithID(ctx, uuid.New().String())
}
