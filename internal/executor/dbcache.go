package executor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/codewithboateng/doclint/internal/shared"
)

const defaultDBCacheSize = 16

// PrepareFunc builds an engine database in dir for files.
type PrepareFunc func(ctx context.Context, dir string, files []string) error

// DBCache maps a file-set fingerprint to a prepared engine database dir.
// Evicted and reset entries have their directory removed.
type DBCache struct {
	cache  *lru.Cache[string, string]
	group  singleflight.Group
	logger *zap.SugaredLogger
}

func NewDBCache(size int, logger *zap.SugaredLogger) (*DBCache, error) {
	if size <= 0 {
		size = defaultDBCacheSize
	}
	c := &DBCache{logger: shared.OrNop(logger)}
	cache, err := lru.NewWithEvict[string, string](size, func(_ string, dir string) {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warnw("engine database not removed", "dir", dir, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("engine db cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Fingerprint identifies a file set independent of order.
func Fingerprint(files []string) string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Get returns the database dir for files, preparing it at most once per
// fingerprint even under concurrent callers. base == "" uses a temp dir.
func (c *DBCache) Get(ctx context.Context, base string, files []string, prepare PrepareFunc) (string, error) {
	key := Fingerprint(files)
	if dir, ok := c.cache.Get(key); ok {
		return dir, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if dir, ok := c.cache.Get(key); ok {
			return dir, nil
		}
		dir, err := makeDBDir(base, key)
		if err != nil {
			return "", err
		}
		if prepare != nil {
			if err := prepare(ctx, dir, files); err != nil {
				_ = os.RemoveAll(dir)
				return "", err
			}
		}
		c.cache.Add(key, dir)
		return dir, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func makeDBDir(base, key string) (string, error) {
	if base == "" {
		dir, err := os.MkdirTemp("", "doclint-db-"+key+"-")
		if err != nil {
			return "", fmt.Errorf("engine db dir: %w", err)
		}
		return dir, nil
	}
	dir := filepath.Join(base, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("engine db dir: %w", err)
	}
	return dir, nil
}

// Len reports how many databases are cached.
func (c *DBCache) Len() int { return c.cache.Len() }

// Reset drops every cached database.
func (c *DBCache) Reset() { c.cache.Purge() }

// database prepares (or reuses) the engine database for files.
func (x *Executor) database(ctx context.Context, files []string) (string, error) {
	if x.DBs == nil {
		return "", nil
	}
	return x.DBs.Get(ctx, x.Engine.DBDir, files, x.prepareDB)
}

func (x *Executor) prepareDB(ctx context.Context, dir string, files []string) error {
	if x.Engine.Prepare == "" {
		return nil
	}
	work, err := os.MkdirTemp("", "doclint-prepare-")
	if err != nil {
		return fmt.Errorf("stage prepare: %w", err)
	}
	defer os.RemoveAll(work)

	list := filepath.Join(work, fileListName)
	if err := writeFileList(list, files); err != nil {
		return fmt.Errorf("stage prepare: %w", err)
	}
	out, err := x.Runner.Run(ctx, x.Engine.WorkDir, x.Engine.PrepareCommand(list, dir), isolatedEnv(x.Engine.ExtraEnv))
	if err != nil {
		return fmt.Errorf("prepare engine db: %w", err)
	}
	// A failed build surfaces later as inconclusive query runs.
	if out.ExitStatus != 0 {
		x.log().Warnw("engine db prepare failed", "dir", dir, "status", out.ExitStatus, "stderr", firstLine(out.Stderr))
	}
	return nil
}
