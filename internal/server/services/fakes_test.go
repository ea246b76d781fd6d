package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/models"
	"github.com/KaityXD/choas-lib/internal/server/registry"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recLogger records every call so tests can assert on what was logged.
type recLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
}

func newRecLogger() *recLogger {
	return &recLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l *recLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l *recLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l *recLogger) With(args ...any) logging.Logger                  { return l }

func (l *recLogger) level(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range *l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

type fakeStore struct {
	mu        sync.Mutex
	live      map[string]bool
	next      int
	createErr error
	revokeErr error
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{live: map[string]bool{}}
}

func (f *fakeStore) Create(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.next++
	tok := fmt.Sprintf("tok-%d", f.next)
	f.live[tok] = true
	return tok, nil
}

func (f *fakeStore) IsValid(_ context.Context, token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[token]
}

func (f *fakeStore) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return f.revokeErr
	}
	delete(f.live, token)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

// fakeRegistry keeps files in a map and can be told to fail.
type fakeRegistry struct {
	mu      sync.Mutex
	files   map[string][]byte
	times   map[string]time.Time
	maxSize int64
	err     error

	inFlight    int
	maxInFlight int
	hold        chan struct{}
}

func newFakeRegistry(maxSize int64) *fakeRegistry {
	return &fakeRegistry{files: map[string][]byte{}, times: map[string]time.Time{}, maxSize: maxSize}
}

func (f *fakeRegistry) enter() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	hold := f.hold
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}
}

func (f *fakeRegistry) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeRegistry) List(context.Context) ([]models.Entry, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Entry, 0, len(f.files))
	for name, data := range f.files {
		out = append(out, models.Entry{Name: name, Size: int64(len(data)), ModTime: f.times[name]})
	}
	return out, nil
}

func (f *fakeRegistry) Store(_ context.Context, name string, data []byte) (int64, error) {
	f.enter()
	defer f.leave()
	if err := registry.ValidateName(name); err != nil {
		return 0, err
	}
	if int64(len(data)) > f.maxSize {
		return 0, common.ErrPayloadTooLarge
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.files[name] = append([]byte(nil), data...)
	f.times[name] = time.Date(2024, 1, 1, 0, len(f.times), 0, 0, time.UTC)
	return int64(len(data)), nil
}

func (f *fakeRegistry) Fetch(_ context.Context, name string) (*registry.Object, error) {
	f.enter()
	defer f.leave()
	if err := registry.ValidateName(name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &registry.Object{Name: name, ContentType: registry.ContentType(name), Data: data}, nil
}

func (f *fakeRegistry) Delete(_ context.Context, name string) error {
	f.enter()
	defer f.leave()
	if err := registry.ValidateName(name); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.files[name]; !ok {
		return common.ErrorNotFound
	}
	delete(f.files, name)
	return nil
}

func (f *fakeRegistry) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// blockingVerifier accepts "pw" and parks every check until release is
// closed, reporting each entry on started.
type blockingVerifier struct {
	started chan struct{}
	release chan struct{}
}

func (v *blockingVerifier) Enabled() bool { return true }

func (v *blockingVerifier) Verify(candidate []byte) bool {
	v.started <- struct{}{}
	<-v.release
	return string(candidate) == "pw"
}
