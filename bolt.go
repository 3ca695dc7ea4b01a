package kvconf

import (
	"fmt"
	"io/fs"

	"go.etcd.io/bbolt"
)

// LoadBolt parses the config text stored under bucket/key in db. A missing
// bucket or key is a *SourceError wrapping fs.ErrNotExist.
func LoadBolt(db *bbolt.DB, bucket, key string, opt Options) (*Store, error) {
	name := bucket + "/" + key
	var s *Store
	err := db.View(func(btx *bbolt.Tx) error {
		b := btx.Bucket([]byte(bucket))
		if b == nil {
			return &SourceError{Path: name, Err: fs.ErrNotExist}
		}
		data := b.Get([]byte(key))
		if data == nil {
			return &SourceError{Path: name, Err: fs.ErrNotExist}
		}
		if len(data) == 0 {
			return &SourceError{Path: name, Err: ErrEmptySource}
		}
		// data is only valid inside the transaction; Parse copies every pair.
		var err error
		s, err = Parse(data, opt)
		if err != nil {
			return fmt.Errorf("kvconf: %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SaveBolt stores the rendered store under bucket/key, creating the bucket
// if needed.
func (s *Store) SaveBolt(db *bbolt.DB, bucket, key string) error {
	data := s.Render()
	err := db.Update(func(btx *bbolt.Tx) error {
		b, err := btx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("kvconf: save %s/%s: %w", bucket, key, err)
	}
	return nil
}
