package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/booklist"
	"bookshelf/internal/platform/booksapi"
	"bookshelf/internal/testutil"
	"bookshelf/internal/view"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter answers prompts from a fixed list.
type scriptedPrompter struct {
	answers []string
	asked   []string
	offered []string
	err     error
}

func (p *scriptedPrompter) next(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	return p.next(prompt)
}

func (p *scriptedPrompter) PromptWithSuggestion(prompt, text string, _ int) (string, error) {
	p.offered = append(p.offered, text)
	return p.next(prompt)
}

type harness struct {
	api    *testutil.FakeAPI
	sh     *shell
	prompt *scriptedPrompter
	out    *bytes.Buffer
}

func newHarness(t *testing.T, seed ...book.Book) *harness {
	t.Helper()
	api := testutil.NewFakeAPI(t, seed...)
	client, err := booksapi.NewClient(api.URL())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	p := &scriptedPrompter{}
	term := view.NewTerminal(out, view.WithColor(false), view.WithSpinner(false))
	sh := &shell{term: term, prompt: p, out: out}
	sh.ctrl = booklist.New(client, term, sh)
	t.Cleanup(sh.ctrl.Close)

	require.NoError(t, sh.ctrl.Start(context.Background()))
	return &harness{api: api, sh: sh, prompt: p, out: out}
}

func TestShell_Basics(t *testing.T) {
	h := newHarness(t, testutil.TestBook)
	ctx := context.Background()

	quit, err := h.sh.exec(ctx, "help")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, h.out.String(), "Commands:")

	quit, err = h.sh.exec(ctx, "  ")
	assert.NoError(t, err)
	assert.False(t, quit)

	quit, err = h.sh.exec(ctx, "quit")
	assert.NoError(t, err)
	assert.True(t, quit)

	_, err = h.sh.exec(ctx, "frobnicate")
	var uerr *usageError
	assert.True(t, errors.As(err, &uerr))
}

func TestShell_List(t *testing.T) {
	h := newHarness(t, testutil.TestBook)

	_, err := h.sh.exec(context.Background(), "reload")
	require.NoError(t, err)
	assert.Equal(t, 2, h.api.Calls(http.MethodGet))
	assert.Contains(t, h.out.String(), "Dune  by Herbert")
}

func TestShell_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("inline", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sh.exec(ctx, "add Solaris | Lem")
		require.NoError(t, err)

		stored := h.api.Books()
		require.Len(t, stored, 1)
		assert.Equal(t, book.Book{ID: 1, Title: "Solaris", Author: "Lem"}, stored[0])
		assert.Equal(t, book.Draft{}, h.sh.term.Draft())
	})

	t.Run("prompted", func(t *testing.T) {
		h := newHarness(t)
		h.prompt.answers = []string{"Dune", "Herbert"}

		_, err := h.sh.exec(ctx, "add")
		require.NoError(t, err)
		assert.Equal(t, []string{"Title: ", "Author: "}, h.prompt.asked)
		assert.Len(t, h.api.Books(), 1)
	})

	t.Run("failed submit keeps draft", func(t *testing.T) {
		h := newHarness(t)
		h.api.FailWith(http.MethodPost, http.StatusInternalServerError)

		_, err := h.sh.exec(ctx, "add Dune | Herbert")
		require.Error(t, err)
		assert.Equal(t, book.Draft{Title: "Dune", Author: "Herbert"}, h.sh.term.Draft())

		h.api.FailWith(http.MethodPost, 0)
		h.prompt.answers = []string{"Dune", "Herbert"}
		_, err = h.sh.exec(ctx, "add")
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune", "Herbert"}, h.prompt.offered)
	})

	t.Run("missing author stays local", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sh.exec(ctx, "add Dune")

		var verr *book.ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Zero(t, h.api.Calls(http.MethodPost))
		assert.Contains(t, h.out.String(), "[error] Please fill in all fields")
	})
}

func TestShell_Search(t *testing.T) {
	h := newHarness(t, testutil.TestBook, book.Book{ID: 2, Title: "Solaris", Author: "Lem"})

	_, err := h.sh.exec(context.Background(), "search sol")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "(1 matching)")
	assert.Equal(t, 1, h.api.Calls(http.MethodGet))
}

func TestShell_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t, testutil.TestBook)
		h.prompt.answers = []string{"y"}

		_, err := h.sh.exec(ctx, "delete #1")
		require.NoError(t, err)
		assert.Empty(t, h.api.Books())
		assert.Equal(t, []string{booklist.ConfirmDeletePrompt + " [y/N] "}, h.prompt.asked)
	})

	t.Run("declined", func(t *testing.T) {
		h := newHarness(t, testutil.TestBook)
		h.prompt.answers = []string{"n"}

		_, err := h.sh.exec(ctx, "delete 1")
		require.NoError(t, err)
		assert.Len(t, h.api.Books(), 1)
		assert.Zero(t, h.api.Calls(http.MethodDelete))
	})

	t.Run("aborted prompt", func(t *testing.T) {
		h := newHarness(t, testutil.TestBook)
		h.prompt.err = liner.ErrPromptAborted

		_, err := h.sh.exec(ctx, "delete 1")
		require.NoError(t, err)
		assert.Zero(t, h.api.Calls(http.MethodDelete))
	})

	t.Run("not listed", func(t *testing.T) {
		h := newHarness(t, testutil.TestBook)

		_, err := h.sh.exec(ctx, "delete 7")
		var uerr *usageError
		require.True(t, errors.As(err, &uerr))
		assert.Contains(t, uerr.Error(), "not listed")
	})

	t.Run("bad id", func(t *testing.T) {
		h := newHarness(t, testutil.TestBook)

		_, err := h.sh.exec(ctx, "delete dune")
		var uerr *usageError
		assert.True(t, errors.As(err, &uerr))
	})
}

func TestNewTerminal_PipedOutputIsPlain(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out, false)

	term.SetLoading(true)
	term.SetCount(1)
	term.SetLoading(false)

	assert.Equal(t, "Loading books...\nBooks: 1\n", out.String())
}
