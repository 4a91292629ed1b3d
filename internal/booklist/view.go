package booklist

import (
	"context"

	"bookshelf/internal/book"
)

// Kind tags a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID      uint64
	Message string
	Kind    Kind
}

// State is a snapshot of what the view is showing.
type State struct {
	Loading      bool
	Empty        bool
	Count        int
	Query        string
	Notification *Notification
}

// View is the presentation surface driven by the controller.
type View interface {
	// SetLoading toggles the loading indicator. While it is on, neither the
	// list nor the empty placeholder is visible.
	SetLoading(on bool)
	SetCount(n int)
	// ShowList replaces the visible list and hides the empty placeholder.
	ShowList(books []book.Book)
	// ShowEmpty clears and hides the list and shows the empty placeholder.
	ShowEmpty()
	// ShowListError puts an inline error placeholder where the list was.
	ShowListError()
	ShowNotification(n Notification)
	HideNotification()
	ResetForm()
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}
