package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookshelf/internal/booklist"
	"bookshelf/internal/view"

	"github.com/peterh/liner"
)

const helpText = `Commands:
  list | reload           fetch all books
  add [title | author]    create a book, prompting for missing fields
  search <text>           filter the loaded books; empty text shows all
  delete <id>             delete a listed book
  help                    show this help
  quit | exit             leave
`

// usageError is a mistake in the command line itself, as opposed to a
// failed operation that the controller already reported.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// prompter is the part of *liner.State the shell uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
}

type shell struct {
	ctrl   *booklist.Controller
	term   *view.Terminal
	prompt prompter
	out    io.Writer
}

// Confirm implements booklist.Confirmer with a y/N prompt.
func (s *shell) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := s.prompt.Prompt(question + " [y/N] ")
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// exec runs one command line. quit is true when the shell should stop.
func (s *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprint(s.out, helpText)
		return false, nil
	case "list", "ls", "reload":
		return false, s.ctrl.LoadBooks(ctx)
	case "add":
		return false, s.add(ctx, rest)
	case "search", "find":
		found := s.ctrl.FilterBooks(rest)
		if rest != "" {
			fmt.Fprintf(s.out, "(%d matching)\n", len(found))
		}
		return false, nil
	case "delete", "rm":
		return false, s.delete(ctx, rest)
	default:
		return false, usagef("unknown command %q, type help", cmd)
	}
}

func (s *shell) add(ctx context.Context, args string) error {
	var title, author string
	if args != "" {
		title, author, _ = strings.Cut(args, "|")
	} else {
		draft := s.term.Draft()
		var err error
		if title, err = s.prompt.PromptWithSuggestion("Title: ", draft.Title, -1); err != nil {
			return err
		}
		if author, err = s.prompt.PromptWithSuggestion("Author: ", draft.Author, -1); err != nil {
			return err
		}
	}

	s.term.SaveDraft(strings.TrimSpace(title), strings.TrimSpace(author))
	return s.ctrl.SubmitNewBook(ctx, title, author)
}

func (s *shell) delete(ctx context.Context, args string) error {
	id, err := strconv.Atoi(strings.TrimPrefix(args, "#"))
	if err != nil {
		return usagef("delete: %q is not a book id", args)
	}

	err = s.ctrl.Dispatch(ctx, id)
	if errors.Is(err, booklist.ErrNoRoute) {
		return usagef("book #%d is not listed, run list or search first", id)
	}
	return err
}
