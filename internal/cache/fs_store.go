package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// NewStore 以 basePath 为根目录构建磁盘缓存，整站复用一份实例。
// 根目录与锁目录不存在时自动创建。
func NewStore(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("cache path required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache path: %w", err)
	}

	locksDir := filepath.Join(abs, ".locks")
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create locks path: %w", err)
	}

	return &fileStore{
		basePath: abs,
		locksDir: locksDir,
		locks:    make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 避免同一 Locator 并发写入；跨进程共享缓存目录时
// 再叠加一层基于 flock 的文件锁。
type fileStore struct {
	basePath string
	locksDir string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Get(ctx context.Context, locator Locator) (*ReadResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	filePath, err := s.entryPath(locator)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := Entry{
		Locator:   locator,
		FilePath:  filePath,
		SizeBytes: info.Size(),
	}

	return &ReadResult{
		Entry:  entry,
		Reader: f,
	}, nil
}

func (s *fileStore) Put(ctx context.Context, locator Locator, body io.Reader) (*Entry, error) {
	unlock, err := s.lockEntry(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer unlock()

	filePath, err := s.entryPath(locator)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(filePath), ".cache-*")
	if err != nil {
		return nil, err
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return nil, err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return nil, err
	}

	entry := Entry{
		Locator:   locator,
		FilePath:  filePath,
		SizeBytes: written,
	}
	return &entry, nil
}

func (s *fileStore) Remove(ctx context.Context, locator Locator) error {
	unlock, err := s.lockEntry(ctx, locator)
	if err != nil {
		return err
	}
	defer unlock()

	filePath, err := s.entryPath(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// lockEntry 先获取进程内锁再获取 flock 文件锁，解锁顺序相反。
func (s *fileStore) lockEntry(ctx context.Context, locator Locator) (func(), error) {
	key := locatorKey(locator)
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}

	lock.mu.Lock()

	fileLock := flock.New(s.lockPath(locator))
	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err == nil && !locked {
		err = ctx.Err()
	}
	if err != nil {
		lock.mu.Unlock()
		release()
		return nil, fmt.Errorf("acquire entry lock: %w", err)
	}

	return func() {
		_ = fileLock.Unlock()
		lock.mu.Unlock()
		release()
	}, nil
}

// lockPath 使用扁平命名避免为锁文件创建嵌套目录。
func (s *fileStore) lockPath(locator Locator) string {
	name := fmt.Sprintf("%s-%s-%s.lock", locator.Package, locator.Version, locator.File)
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, ":", "-")
	return filepath.Join(s.locksDir, name)
}

func (s *fileStore) entryPath(locator Locator) (string, error) {
	if locator.Package == "" || locator.Version == "" || locator.File == "" {
		return "", errors.New("package, version and file required")
	}

	// 去掉版本号前导 @，兼容 Windows 文件系统。
	version := strings.TrimPrefix(locator.Version, "@")

	raw := locator.Package + "/" + version + "/" + locator.File
	for _, segment := range strings.Split(raw, "/") {
		if segment == ".." {
			return "", errors.New("invalid cache path")
		}
	}

	rel := path.Clean("/" + raw)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return "", errors.New("invalid cache path")
	}

	filePath := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if !strings.HasPrefix(filePath, s.basePath+string(filepath.Separator)) {
		return "", errors.New("invalid cache path")
	}
	return filePath, nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}

func locatorKey(locator Locator) string {
	return locator.Package + "@" + locator.Version + "::" + locator.File
}
