package storage

import (
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryCollection is a Collection held in process memory. Useful for
// tests and one-shot runs; nothing survives Close.
type MemoryCollection struct {
	records *xsync.Map[string, Record] // id -> record copy
}

// NewMemoryCollection returns an empty in-memory collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{records: xsync.NewMap[string, Record]()}
}

// Save stores a copy of rec.
func (c *MemoryCollection) Save(ctx context.Context, rec *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = newRecordID()
	}
	c.records.Store(rec.ID, *rec)
	return rec.ID, nil
}

// Find returns copies of all matching records ordered by name.
func (c *MemoryCollection) Find(ctx context.Context, filter Filter) ([]*Record, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filter.Field == FieldID {
		rec, ok := c.records.Load(filter.Value)
		if !ok {
			return nil, nil
		}
		return []*Record{&rec}, nil
	}

	var recs []*Record
	c.records.Range(func(_ string, rec Record) bool {
		if filter.Matches(&rec) {
			recs = append(recs, &rec)
		}
		return true
	})
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

// FindOne returns the first matching record, or nil.
func (c *MemoryCollection) FindOne(ctx context.Context, filter Filter) (*Record, error) {
	recs, err := c.Find(ctx, filter)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// Len returns the number of stored records.
func (c *MemoryCollection) Len() int {
	return c.records.Size()
}

// Close drops all records.
func (c *MemoryCollection) Close() error {
	c.records.Clear()
	return nil
}
