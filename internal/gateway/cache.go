package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var blameBucket = []byte("blame")

// CachedFetcher stores blame output in a bbolt file keyed by HEAD revision
// and path. Blame at a fixed revision never changes, so entries need no
// expiry. All other queries go straight to the wrapped Fetcher.
type CachedFetcher struct {
	Fetcher
	db     *bolt.DB
	logger logrus.FieldLogger

	once    sync.Once
	head    string
	headErr error
}

// OpenCachedFetcher opens (or creates) the cache file at path.
func OpenCachedFetcher(path string, inner Fetcher, logger logrus.FieldLogger) (*CachedFetcher, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open blame cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blameBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize blame cache: %w", err)
	}
	return &CachedFetcher{Fetcher: inner, db: db, logger: logger}, nil
}

// Close releases the cache file.
func (c *CachedFetcher) Close() error {
	return c.db.Close()
}

func (c *CachedFetcher) revision(ctx context.Context) (string, error) {
	c.once.Do(func() {
		c.head, c.headErr = c.Fetcher.FetchHeadRevision(ctx)
	})
	return c.head, c.headErr
}

// FetchBlame serves path from the cache when present. Cache failures fall
// back to the wrapped Fetcher.
func (c *CachedFetcher) FetchBlame(ctx context.Context, path string) (string, error) {
	head, err := c.revision(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("blame cache disabled, HEAD unknown")
		return c.Fetcher.FetchBlame(ctx, path)
	}
	key := []byte(head + "\x00" + path)

	var cached []byte
	err = c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(blameBucket).Get(key); v != nil {
			cached = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Debug("blame cache read failed")
	}
	if cached != nil {
		return string(cached), nil
	}

	text, err := c.Fetcher.FetchBlame(ctx, path)
	if err != nil {
		return "", err
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blameBucket).Put(key, []byte(text))
	})
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Debug("blame cache write failed")
	}
	return text, nil
}
