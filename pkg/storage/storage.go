// Package storage is the pebble-backed blob store behind the movie catalog.
// Values are grouped into buckets and addressed by KSUID, so a bucket scan
// returns entries in creation order.
package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no value exists for an id.
var ErrNotFound = errors.New("not found")

type DefaultStorage struct {
	db *pebble.DB
}

func NewDefaultStorage(path string) (*DefaultStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", path, err)
	}
	return &DefaultStorage{db: db}, nil
}

func bucketKey(bucket string, id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(bucket)+1+len(id))
	key = append(key, bucket...)
	key = append(key, '/')
	return append(key, id.Bytes()...)
}

// Create stores one value per bucket under a fresh id in a single batch.
func (s *DefaultStorage) Create(values map[string][]byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.Put(id, values); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Put stores one value per bucket under id in a single batch.
func (s *DefaultStorage) Put(id ksuid.KSUID, values map[string][]byte) error {
	b := s.db.NewBatch()
	defer b.Close()
	for bucket, data := range values {
		if err := b.Set(bucketKey(bucket, id), data, nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// Read returns a copy of the value stored under id in bucket.
func (s *DefaultStorage) Read(bucket string, id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(bucketKey(bucket, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return bytes.Clone(data), nil
}

// Delete removes id from every listed bucket in a single batch.
func (s *DefaultStorage) Delete(id ksuid.KSUID, buckets ...string) error {
	b := s.db.NewBatch()
	defer b.Close()
	for _, bucket := range buckets {
		if err := b.Delete(bucketKey(bucket, id), nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// Scan calls fn for every entry of bucket in id order. The data slice is
// only valid during the call. Returning an error from fn stops the scan.
func (s *DefaultStorage) Scan(bucket string, fn func(id ksuid.KSUID, data []byte) error) error {
	prefix := []byte(bucket + "/")
	upper := []byte(bucket + "0") // '0' sorts right after '/'

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			iter.Close()
			return fmt.Errorf("corrupt key in bucket %s: %w", bucket, err)
		}
		if err := fn(id, iter.Value()); err != nil {
			iter.Close()
			return err
		}
	}

	return iter.Close()
}

func (s *DefaultStorage) Close() error {
	return s.db.Close()
}
