package services

import (
	"context"
	"errors"
	"net/url"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/models"
	"github.com/KaityXD/choas-lib/internal/server/registry"
	"golang.org/x/sync/semaphore"
)

// ListQuery selects one page of the sorted file listing.
type ListQuery struct {
	Page     int
	PageSize int
	SortBy   registry.SortBy
	Order    registry.Order
}

// Stats summarises the stored files for the admin panel.
type Stats struct {
	Files      int
	TotalBytes int64
}

// FileService runs file operations against a Registry with at most
// `workers` of them touching storage at once.
type FileService struct {
	registry   registry.Registry
	quota      *Quota
	sem        *semaphore.Weighted
	publicHost string
	log        logging.Logger
}

func NewFileService(r registry.Registry, q *Quota, workers int, publicHost string, l logging.Logger) *FileService {
	if workers < 1 {
		workers = 1
	}
	return &FileService{
		registry:   r,
		quota:      q,
		sem:        semaphore.NewWeighted(int64(workers)),
		publicHost: publicHost,
		log:        l.With("module", "files"),
	}
}

// PublicURL is where a stored file is served from.
func (s *FileService) PublicURL(name string) string {
	return "https://" + s.publicHost + "/cdn/" + url.PathEscape(name)
}

// Upload stores data under name and returns its public URL.
func (s *FileService) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := registry.ValidateName(name); err != nil {
		return "", err
	}

	release, err := s.quota.Reserve(int64(len(data)))
	if err != nil {
		s.log.Warn(ctx, "daily upload limit reached", "name", name, "size", len(data))
		return "", err
	}

	n, err := s.store(ctx, name, data)
	if err != nil {
		release()
		return "", s.fail(ctx, "store", name, err)
	}

	s.log.Info(ctx, "file stored", "name", name, "size", n)
	return s.PublicURL(name), nil
}

func (s *FileService) store(ctx context.Context, name string, data []byte) (int64, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer s.sem.Release(1)
	return s.registry.Store(ctx, name, data)
}

// List returns the requested page of the sorted listing.
func (s *FileService) List(ctx context.Context, q ListQuery) (registry.Page, error) {
	entries, err := s.ListAll(ctx, q.SortBy, q.Order)
	if err != nil {
		return registry.Page{}, err
	}
	return registry.Paginate(entries, q.Page, q.PageSize), nil
}

// ListAll returns every entry, sorted.
func (s *FileService) ListAll(ctx context.Context, by registry.SortBy, order registry.Order) ([]models.Entry, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	entries, err := s.registry.List(ctx)
	s.sem.Release(1)
	if err != nil {
		return nil, s.fail(ctx, "list", "", err)
	}

	registry.Sort(entries, by, order)
	return entries, nil
}

// Read returns the content of name.
func (s *FileService) Read(ctx context.Context, name string) (*registry.Object, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	obj, err := s.registry.Fetch(ctx, name)
	if err != nil {
		return nil, s.fail(ctx, "fetch", name, err)
	}
	return obj, nil
}

// Remove deletes name. Callers check authorisation first.
func (s *FileService) Remove(ctx context.Context, name string) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	if err := s.registry.Delete(ctx, name); err != nil {
		return s.fail(ctx, "delete", name, err)
	}
	s.log.Info(ctx, "file deleted", "name", name)
	return nil
}

// Stats counts stored files and their total size.
func (s *FileService) Stats(ctx context.Context) (Stats, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Stats{}, err
	}
	entries, err := s.registry.List(ctx)
	s.sem.Release(1)
	if err != nil {
		return Stats{}, s.fail(ctx, "list", "", err)
	}

	return StatsOf(entries), nil
}

// StatsOf totals an already fetched listing.
func StatsOf(entries []models.Entry) Stats {
	st := Stats{Files: len(entries)}
	for _, e := range entries {
		st.TotalBytes += e.Size
	}
	return st
}

// Ping checks the storage backend.
func (s *FileService) Ping(ctx context.Context) error {
	return s.registry.Ping(ctx)
}

// fail logs storage failures. Caller-side errors pass through silently.
func (s *FileService) fail(ctx context.Context, op, name string, err error) error {
	if errors.Is(err, common.ErrStorageFailure) {
		var se *registry.StorageError
		if errors.As(err, &se) {
			s.log.Error(ctx, "storage failure", "op", op, "name", name, "error", se.Err)
		} else {
			s.log.Error(ctx, "storage failure", "op", op, "name", name)
		}
	}
	return err
}
