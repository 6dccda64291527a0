package kvbackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/func/cfn-sagemaker/storage"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bolt stores key-value pairs in bolt db.
//
// Keys are split into a bucket and a key on the last slash. Nested buckets
// are not used; runs/abc is stored as key abc in bucket runs.
type Bolt struct {
	db *bolt.DB
}

// DefaultFile returns the default location of the state file,
// ~/.cfn-sagemaker/state.db.
func DefaultFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get home dir")
	}
	return filepath.Join(home, ".cfn-sagemaker", "state.db"), nil
}

// NewBolt creates and opens a database at the given path. If the file or
// directory do not exist, they are created. If file is empty, DefaultFile()
// is used.
//
// Opening blocks for up to timeout if another process holds the database.
func NewBolt(file string, timeout time.Duration) (*Bolt, error) {
	if file == "" {
		def, err := DefaultFile()
		if err != nil {
			return nil, err
		}
		file = def
	}
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, errors.Wrapf(err, "ensure dir exists: %s", filepath.Dir(file))
	}
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt db %s", file)
	}
	return &Bolt{db: db}, nil
}

// Path returns the path to the database file.
func (b *Bolt) Path() string {
	return b.db.Path()
}

// Close closes the Bolt DB store and releases all resources.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Put creates or updates a value.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := boltBucketKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		b, err := tx.CreateBucketIfNotExists(buc)
		if err != nil {
			return errors.Wrap(err, "ensure bucket exists")
		}
		return b.Put(k, value)
	})
}

// Get returns a single value.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ret []byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		buc, k, err := boltBucketKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		b := tx.Bucket(buc)
		if b == nil {
			return storage.ErrNotFound
		}
		data := b.Get(k)
		if len(data) == 0 {
			return storage.ErrNotFound
		}
		ret = make([]byte, len(data))
		copy(ret, data)
		return nil
	}); err != nil {
		return nil, err
	}
	return ret, nil
}

// Delete deletes a key.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := boltBucketKey(key)
		if err != nil {
			return errors.Wrap(err, "get bucket name")
		}
		b := tx.Bucket(buc)
		if b == nil {
			return storage.ErrNotFound
		}
		data := b.Get(k)
		if len(data) == 0 {
			return storage.ErrNotFound
		}
		if err = b.Delete(k); err != nil {
			return errors.Wrap(err, "delete key")
		}
		return nil
	})
}

// Scan performs a prefix scan and populates the returned map with any values
// matching the prefix.
//
// Note: the prefix must match a bucket. The bucket used is the key up to the
// last / character.
func (b *Bolt) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if strings.HasSuffix(prefix, "/") {
		return nil, errors.New("prefix should not contain trailing /")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ret := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			val := make([]byte, len(v))
			copy(val, v)
			key := prefix + "/" + string(k)
			ret[key] = val
			return nil
		})
	})
	return ret, err
}

// boltBucket returns the bucket and key to use for a storing a user specified
// key.
//
// The bucket is determined by looking for the last /. Anything before it is
// used as the bucket and anything after it as the key.
//
//   runs/1Oz3u9Hd2ViOwvvVNCwx1hwpd2D
//   ->
//   bucket: runs
//   key:    1Oz3u9Hd2ViOwvvVNCwx1hwpd2D
//
// Returns an error if the input does not contain a slash.
func boltBucketKey(input string) (bucket, key []byte, err error) {
	if strings.HasPrefix(input, "/") {
		return nil, nil, errors.New("input cannot start with a slash")
	}
	if strings.HasSuffix(input, "/") {
		return nil, nil, errors.New("input cannot end with a slash")
	}
	slash := strings.LastIndex(input, "/")
	if slash == -1 {
		return nil, nil, errors.New("input does not contain a slash")
	}
	return []byte(input[:slash]), []byte(input[slash+1:]), nil
}
