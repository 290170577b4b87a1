package epoch

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/ugorji/go/codec"
)

const epochKeyPrefix = "epoch"

// Cache is a Badger-backed store of Records keyed by epoch. Within a single
// source history each epoch maps to exactly one tick, so cached pairs never
// go stale; the cache only exists to skip repeated history scans.
type Cache struct {
	db   *badger.DB
	path string
}

// OpenCache opens (or creates) the cache database under path.
func OpenCache(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db, path: path}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached Record for epoch, if any.
func (c *Cache) Get(epoch uint32) (*Record, bool) {
	var rec Record
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(epochKey(epoch))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if err := unmarshalRecord(val, &rec); err != nil {
			return err
		}

		found = true
		return nil
	})

	if err != nil || !found {
		return nil, false
	}

	return &rec, true
}

// Set stores rec under its epoch.
func (c *Cache) Set(rec *Record) error {
	val, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(epochKey(rec.Epoch), val)
	})
}

func epochKey(epoch uint32) []byte {
	return []byte(fmt.Sprintf("%s_%09d", epochKeyPrefix, epoch))
}

func marshalRecord(rec *Record) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	enc := codec.NewEncoder(b, jh)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func unmarshalRecord(data []byte, rec *Record) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	dec := codec.NewDecoder(b, jh)
	return dec.Decode(rec)
}
