// Copyright 2024 DiskMeta Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"

	"diskmeta/internal/common"
)

// Key layout
//
// Badger is a plain key-value store, so records and their secondary
// indexes live under prefixed keys inside the collection namespace:
//
//	<coll>/n:<id>                   record (JSON)
//	<coll>/p:<path>\x00<id>         path index (empty value)
//	<coll>/c:<parentID>\x00<id>     children index (empty value)
//
// The NUL terminator keeps "/a" from prefix-matching "/ab". Field queries
// on path and parent_id are prefix scans; id queries are point reads.
const keySep = "\x00"

// BadgerConfig configures the badger collection backend.
type BadgerConfig struct {
	Dir        string // database directory, ignored when InMemory
	InMemory   bool
	Collection string // key namespace, defaults to DefaultCollection
}

// BadgerCollection is a Collection backed by an embedded BadgerDB.
type BadgerCollection struct {
	db     *badger.DB
	ns     string
	logger logrus.FieldLogger
}

// OpenBadgerCollection opens the badger database described by cfg.
// Failures to open (including a directory locked by another process) are
// reported as common.ErrStoreUnavailable.
func OpenBadgerCollection(ctx context.Context, cfg BadgerConfig, logger logrus.FieldLogger) (*BadgerCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ns := cfg.Collection
	if ns == "" {
		ns = DefaultCollection
	}
	if !ValidCollectionName(ns) {
		return nil, fmt.Errorf("invalid collection name %q", ns)
	}
	if logger == nil {
		logger = discardLogger()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("%w: no badger directory configured", common.ErrStoreUnavailable)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	// Records are small, compression overhead not worth it
	opts = opts.WithCompression(options.None).
		WithLogger(logger).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %s: %w", common.ErrStoreUnavailable, cfg.Dir, err)
	}

	logger.WithFields(logrus.Fields{"dir": cfg.Dir, "collection": ns, "in_memory": cfg.InMemory}).Debug("Opened badger collection")

	return &BadgerCollection{db: db, ns: ns, logger: logger}, nil
}

func (c *BadgerCollection) keyRecord(id string) []byte {
	return []byte(c.ns + "/n:" + id)
}

func (c *BadgerCollection) keyPathPrefix(path string) []byte {
	return []byte(c.ns + "/p:" + path + keySep)
}

func (c *BadgerCollection) keyChildPrefix(parentID string) []byte {
	return []byte(c.ns + "/c:" + parentID + keySep)
}

func (c *BadgerCollection) indexKeys(rec *Record) [][]byte {
	keys := [][]byte{append(c.keyPathPrefix(rec.Path), rec.ID...)}
	if rec.ParentID != "" {
		keys = append(keys, append(c.keyChildPrefix(rec.ParentID), rec.ID...))
	}
	return keys
}

func encodeRecord(rec *Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedRecord, err)
	}
	return &rec, nil
}

// getRecord reads the record stored under id, or nil if there is none.
func (c *BadgerCollection) getRecord(txn *badger.Txn, id string) (*Record, error) {
	item, err := txn.Get(c.keyRecord(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec *Record
	err = item.Value(func(val []byte) error {
		r, err := decodeRecord(val)
		rec = r
		return err
	})
	return rec, err
}

// Save upserts rec and rewrites its index entries in one transaction.
func (c *BadgerCollection) Save(ctx context.Context, rec *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = newRecordID()
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		old, err := c.getRecord(txn, rec.ID)
		if err != nil {
			return err
		}
		if old != nil {
			for _, key := range c.indexKeys(old) {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
		}
		if err := txn.Set(c.keyRecord(rec.ID), data); err != nil {
			return err
		}
		for _, key := range c.indexKeys(rec) {
			if err := txn.Set(key, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// Find returns every record matching filter.
func (c *BadgerCollection) Find(ctx context.Context, filter Filter) ([]*Record, error) {
	return c.find(ctx, filter, 0)
}

// FindOne returns the first record matching filter, or nil.
func (c *BadgerCollection) FindOne(ctx context.Context, filter Filter) (*Record, error) {
	recs, err := c.find(ctx, filter, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (c *BadgerCollection) find(ctx context.Context, filter Filter, limit int) ([]*Record, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var recs []*Record
	err := c.db.View(func(txn *badger.Txn) error {
		if filter.Field == FieldID {
			rec, err := c.getRecord(txn, filter.Value)
			if rec != nil {
				recs = append(recs, rec)
			}
			return err
		}

		var prefix []byte
		if filter.Field == FieldPath {
			prefix = c.keyPathPrefix(filter.Value)
		} else {
			if filter.Value == "" {
				return nil
			}
			prefix = c.keyChildPrefix(filter.Value)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			rec, err := c.getRecord(txn, id)
			if err != nil {
				return err
			}
			if rec == nil {
				// Dangling index entry
				c.logger.WithField("id", id).Warn("Index entry without record")
				continue
			}
			recs = append(recs, rec)
			if limit > 0 && len(recs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", filter, err)
	}
	return recs, nil
}

// Close closes the badger database
func (c *BadgerCollection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
