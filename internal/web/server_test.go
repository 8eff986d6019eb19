package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daybreak-home/daybreak/internal/config"
	"github.com/daybreak-home/daybreak/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeGenerator struct {
	calls int
	text  string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context) (store.Message, error) {
	f.calls++
	if f.err != nil {
		return store.Message{}, f.err
	}
	return store.Message{Text: f.text, GeneratedAt: time.Now()}, nil
}

type memStore struct {
	msg    *store.Message
	wrErr  error
	rdErr  error
	writes int
}

func (m *memStore) Write(msg store.Message) error {
	m.writes++
	if m.wrErr != nil {
		return m.wrErr
	}
	m.msg = &msg
	return nil
}

func (m *memStore) Read() (store.Message, error) {
	if m.rdErr != nil {
		return store.Message{}, m.rdErr
	}
	if m.msg == nil {
		return store.Message{}, store.ErrEmpty
	}
	return *m.msg, nil
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func TestCachedMode_ServesStoredMessage(t *testing.T) {
	st := &memStore{msg: &store.Message{Text: "Good morning from the cache."}}
	gen := &fakeGenerator{text: "fresh"}
	s := NewServer(":0", config.ModeCached, gen, st, testLogger())

	resp, body := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "Good morning from the cache." {
		t.Errorf("body = %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times in cached mode", gen.calls)
	}
}

func TestCachedMode_EmptyStore(t *testing.T) {
	s := NewServer(":0", config.ModeCached, &fakeGenerator{text: "fresh"}, &memStore{}, testLogger())

	resp, _ := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCachedMode_ReadFailure(t *testing.T) {
	st := &memStore{rdErr: errors.New("disk trouble")}
	s := NewServer(":0", config.ModeCached, &fakeGenerator{}, st, testLogger())

	resp, _ := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestOnDemandMode_GeneratesFresh(t *testing.T) {
	st := &memStore{}
	gen := &fakeGenerator{text: "freshly generated"}
	s := NewServer(":0", config.ModeOnDemand, gen, st, testLogger())

	resp, body := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "freshly generated" {
		t.Errorf("body = %q", body)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
	if st.writes != 0 {
		t.Errorf("on-demand GET / should not persist, got %d writes", st.writes)
	}
}

func TestOnDemandMode_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("completion service down")}
	s := NewServer(":0", config.ModeOnDemand, gen, &memStore{}, testLogger())

	resp, _ := get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestWriteMessage_PersistsAndReturns(t *testing.T) {
	st := &memStore{}
	gen := &fakeGenerator{text: "regenerated"}
	s := NewServer(":0", config.ModeCached, gen, st, testLogger())

	resp, body := get(t, s.Handler(), "/write_message")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "regenerated" {
		t.Errorf("body = %q", body)
	}
	if st.msg == nil || st.msg.Text != "regenerated" {
		t.Errorf("store = %+v, want the regenerated message", st.msg)
	}

	// The cached read path now serves the new message.
	resp, body = get(t, s.Handler(), "/")
	if resp.StatusCode != http.StatusOK || body != "regenerated" {
		t.Errorf("GET / after regeneration = %d %q", resp.StatusCode, body)
	}
}

func TestWriteMessage_StoreFailure(t *testing.T) {
	st := &memStore{wrErr: errors.New("disk full")}
	gen := &fakeGenerator{text: "text"}
	s := NewServer(":0", config.ModeOnDemand, gen, st, testLogger())

	resp, _ := get(t, s.Handler(), "/write_message")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestUnknownPath(t *testing.T) {
	s := NewServer(":0", config.ModeCached, &fakeGenerator{}, &memStore{}, testLogger())

	resp, _ := get(t, s.Handler(), "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
