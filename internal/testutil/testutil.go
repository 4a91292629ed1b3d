package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"bookshelf/internal/book"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TestBook is a sample record for tests.
var TestBook = book.Book{ID: 1, Title: "Dune", Author: "Herbert"}

// FakeAPI is an in-memory books API with the same status codes as the
// real service: 201 on create, 400 on a missing field, 404 on an unknown id.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	books    []book.Book
	nextID   int
	failures map[string]int
	calls    map[string]int
	rawList  []byte
}

// NewFakeAPI starts a fake API seeded with books and stops it when the
// test ends.
func NewFakeAPI(t testing.TB, seed ...book.Book) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		failures: make(map[string]int),
		calls:    make(map[string]int),
		nextID:   1,
	}
	for _, b := range seed {
		f.books = append(f.books, b)
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
	}

	r := chi.NewRouter()
	r.Use(f.count)
	r.Get("/books", f.list)
	r.Post("/books", f.create)
	r.Delete("/books/{id}", f.delete)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// FailWith makes every following request with method answer status.
// Passing 0 clears the failure.
func (f *FakeAPI) FailWith(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, method)
		return
	}
	f.failures[method] = status
}

// ServeRawList makes GET /books answer body verbatim.
func (f *FakeAPI) ServeRawList(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawList = []byte(body)
}

// Calls reports how many requests with method were received.
func (f *FakeAPI) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Books returns a copy of the stored records.
func (f *FakeAPI) Books() []book.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]book.Book(nil), f.books...)
}

func (f *FakeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Method]++
		status := f.failures[r.Method]
		f.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	raw := f.rawList
	books := append([]book.Book{}, f.books...)
	f.mu.Unlock()

	if raw != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == nil || body.Author == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and author are required"})
		return
	}

	f.mu.Lock()
	b := book.Book{ID: f.nextID, Title: *body.Title, Author: *body.Author}
	f.nextID++
	f.books = append(f.books, b)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, b)
}

func (f *FakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "book not found"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.books {
		if b.ID == id {
			f.books = append(f.books[:i], f.books[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "book deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "book not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
