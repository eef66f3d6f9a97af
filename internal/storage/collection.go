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
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// DefaultCollection is the collection (table) name used when none is configured.
const DefaultCollection = "fs"

// Record is the persisted shape of a node:
//
//	{ "_id": <id>, "type": "F"|"D", "parent_id": <id>, "name": <string>, "path": <string> }
//
// parent_id is omitted for the root; _id is omitted until the record is saved.
type Record struct {
	ID       string `json:"_id,omitempty"`
	Type     string `json:"type,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// Field names a queryable record field.
type Field string

const (
	FieldID       Field = "_id"
	FieldPath     Field = "path"
	FieldParentID Field = "parent_id"
)

// Filter selects records whose Field equals Value exactly.
type Filter struct {
	Field Field
	Value string
}

// ByID selects the record with the given id.
func ByID(id string) Filter { return Filter{Field: FieldID, Value: id} }

// ByPath selects records with the given path.
func ByPath(path string) Filter { return Filter{Field: FieldPath, Value: path} }

// ByParentID selects the children of the directory with the given id.
func ByParentID(id string) Filter { return Filter{Field: FieldParentID, Value: id} }

func (f Filter) String() string {
	return fmt.Sprintf("%s=%q", f.Field, f.Value)
}

// Matches reports whether rec satisfies the filter.
func (f Filter) Matches(rec *Record) bool {
	switch f.Field {
	case FieldID:
		return rec.ID == f.Value
	case FieldPath:
		return rec.Path == f.Value
	case FieldParentID:
		return rec.ParentID != "" && rec.ParentID == f.Value
	default:
		return false
	}
}

func (f Filter) validate() error {
	switch f.Field {
	case FieldID, FieldPath, FieldParentID:
		return nil
	default:
		return fmt.Errorf("unsupported filter field %q", f.Field)
	}
}

// Collection is the document store boundary: upsert by identity and
// exact-match queries on a single field. No uniqueness is enforced.
type Collection interface {
	// Save inserts or replaces rec, assigning an id when rec.ID is empty.
	// Returns the record's id.
	Save(ctx context.Context, rec *Record) (string, error)

	// Find returns all records matching filter, possibly none.
	Find(ctx context.Context, filter Filter) ([]*Record, error)

	// FindOne returns one record matching filter, or nil if there is none.
	FindOne(ctx context.Context, filter Filter) (*Record, error)

	// Close releases the underlying store.
	Close() error
}

// newRecordID returns a fresh record identifier.
func newRecordID() string {
	return uuid.NewString()
}

var collectionNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidCollectionName reports whether name can be used as a collection
// (table / key namespace) name.
func ValidCollectionName(name string) bool {
	return collectionNameRe.MatchString(name)
}
