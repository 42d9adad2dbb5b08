// Package repositories adapts the document store behind small per-collection
// interfaces. The current adapter is BadgerDB with JSON values; every key is
// prefixed and scoped so one collection can never scan into another.
package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"campushub/errors"
)

func encode(v any) ([]byte, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return bytes, nil
}

func decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

// getOne reads one key, mapping a missing key to the not-found sentinel so
// services never see badger internals.
func getOne(db *badger.DB, key string, into any) error {
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, into)
		})
	})
	switch {
	case err == nil:
		return nil
	case err == badger.ErrKeyNotFound:
		return errors.ErrNotFound
	default:
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
}

func setOne(db *badger.DB, key string, v any) error {
	bytes, err := encode(v)
	if err != nil {
		return err
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

// scanPrefix walks a prefix in key order and hands every value to fn.
func scanPrefix(db *badger.DB, prefix string, fn func(key string, val []byte) error) error {
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(val []byte) error {
				return fn(key, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}
