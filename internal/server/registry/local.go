package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/filex"
	"github.com/KaityXD/choas-lib/internal/server/models"
)

const filePerm = 0o640

// LocalRegistry keeps files in one flat directory.
//
// Writes land in a temporary file that is renamed over the target, and a
// per-name RW lock orders Store/Delete against Fetch of the same name.
type LocalRegistry struct {
	dir     string
	maxSize int64
	locks   *keyedLocker
}

// NewLocalRegistry creates dir if needed.
func NewLocalRegistry(dir string, maxSize int64) (*LocalRegistry, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, storageErr("init", "", err)
	}
	return &LocalRegistry{dir: abs, maxSize: maxSize, locks: newKeyedLocker()}, nil
}

func (r *LocalRegistry) List(ctx context.Context) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, storageErr("list", "", err)
	}

	entries := make([]models.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			// deleted between ReadDir and Info
			continue
		}
		if err != nil {
			return nil, storageErr("list", de.Name(), err)
		}
		entries = append(entries, models.Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

func (r *LocalRegistry) Store(ctx context.Context, name string, data []byte) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if err := checkSize(data, r.maxSize); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock := r.locks.Lock(name)
	defer unlock()

	if err := r.ensureNotDir(name); err != nil {
		return 0, err
	}
	if err := filex.WriteAtomic(r.dir, name, data, filePerm); err != nil {
		return 0, storageErr("store", name, err)
	}
	return int64(len(data)), nil
}

func (r *LocalRegistry) Fetch(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := r.locks.RLock(name)
	defer unlock()

	path := filepath.Join(r.dir, name)
	info, err := r.statRegular(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, storageErr("fetch", name, err)
	}

	return &Object{
		Name:        name,
		ContentType: ContentType(name),
		Data:        data,
		ModTime:     info.ModTime(),
	}, nil
}

func (r *LocalRegistry) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := r.locks.Lock(name)
	defer unlock()

	if _, err := r.statRegular(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(r.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return common.ErrorNotFound
	}
	if err != nil {
		return storageErr("delete", name, err)
	}
	return nil
}

func (r *LocalRegistry) Ping(ctx context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return storageErr("ping", "", err)
	}
	if !info.IsDir() {
		return storageErr("ping", "", errors.New("storage root is not a directory"))
	}
	return nil
}

// statRegular treats anything that is not a regular file as absent.
func (r *LocalRegistry) statRegular(name string) (fs.FileInfo, error) {
	info, err := os.Lstat(filepath.Join(r.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, storageErr("stat", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, common.ErrorNotFound
	}
	return info, nil
}

// ensureNotDir refuses to replace a directory that happens to share name.
func (r *LocalRegistry) ensureNotDir(name string) error {
	info, err := os.Lstat(filepath.Join(r.dir, name))
	if err == nil && info.IsDir() {
		return storageErr("store", name, errors.New("target is a directory"))
	}
	return nil
}
