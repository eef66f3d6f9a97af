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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectionFactory creates a fresh, empty collection for one test.
type collectionFactory func(t *testing.T) Collection

func collectionBackends() map[string]collectionFactory {
	return map[string]collectionFactory{
		"memory": func(t *testing.T) Collection {
			return NewMemoryCollection()
		},
		"badger_in_memory": func(t *testing.T) Collection {
			c, err := OpenBadgerCollection(context.Background(), BadgerConfig{InMemory: true}, nil)
			require.NoError(t, err)
			return c
		},
		"badger_dir": func(t *testing.T) Collection {
			c, err := OpenBadgerCollection(context.Background(), BadgerConfig{Dir: filepath.Join(t.TempDir(), "badger")}, nil)
			require.NoError(t, err)
			return c
		},
		"sqlite": func(t *testing.T) Collection {
			c, err := OpenSQLCollection(context.Background(), SQLConfig{Path: filepath.Join(t.TempDir(), "meta.db")}, nil)
			require.NoError(t, err)
			return c
		},
	}
}

// TestCollectionConformance runs the same behavioral suite against every backend.
func TestCollectionConformance(t *testing.T) {
	for name, factory := range collectionBackends() {
		t.Run(name, func(t *testing.T) {
			runCollectionSuite(t, factory)
		})
	}
}

func runCollectionSuite(t *testing.T, newCollection collectionFactory) {
	ctx := context.Background()

	t.Run("save assigns id", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		rec := &Record{Type: "D", Name: "", Path: ""}
		id, err := c.Save(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rec.ID)
	})

	t.Run("save keeps explicit id", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		id, err := c.Save(ctx, &Record{ID: "fixed", Type: "F", Name: "a", Path: "/a"})
		require.NoError(t, err)
		assert.Equal(t, "fixed", id)
	})

	t.Run("find one by id and path", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		id, err := c.Save(ctx, &Record{Type: "F", ParentID: "root", Name: "a", Path: "/a"})
		require.NoError(t, err)

		got, err := c.FindOne(ctx, ByID(id))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, &Record{ID: id, Type: "F", ParentID: "root", Name: "a", Path: "/a"}, got)

		got, err = c.FindOne(ctx, ByPath("/a"))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
	})

	t.Run("find one absent returns nil", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		got, err := c.FindOne(ctx, ByPath("/missing"))
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = c.FindOne(ctx, ByID("missing"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("root record round trips without parent", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		id, err := c.Save(ctx, &Record{Type: "D", Name: "", Path: ""})
		require.NoError(t, err)

		got, err := c.FindOne(ctx, ByPath(""))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Empty(t, got.ParentID)
		assert.Empty(t, got.Name)
	})

	t.Run("path match is exact", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		_, err := c.Save(ctx, &Record{Type: "F", Name: "ab", Path: "/ab"})
		require.NoError(t, err)

		got, err := c.Find(ctx, ByPath("/a"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("find by parent id", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		parent, err := c.Save(ctx, &Record{Type: "D", Name: "dir", Path: "/dir"})
		require.NoError(t, err)
		other, err := c.Save(ctx, &Record{Type: "D", Name: "other", Path: "/other"})
		require.NoError(t, err)

		for _, name := range []string{"b", "a", "c"} {
			_, err := c.Save(ctx, &Record{Type: "F", ParentID: parent, Name: name, Path: "/dir/" + name})
			require.NoError(t, err)
		}
		_, err = c.Save(ctx, &Record{Type: "F", ParentID: other, Name: "z", Path: "/other/z"})
		require.NoError(t, err)

		got, err := c.Find(ctx, ByParentID(parent))
		require.NoError(t, err)
		var names []string
		for _, rec := range got {
			assert.Equal(t, parent, rec.ParentID)
			names = append(names, rec.Name)
		}
		assert.ElementsMatch(t, []string{"a", "b", "c"}, names)
	})

	t.Run("empty parent id matches nothing", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		_, err := c.Save(ctx, &Record{Type: "D", Name: "", Path: ""})
		require.NoError(t, err)

		got, err := c.Find(ctx, ByParentID(""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("save upserts and reindexes", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		rec := &Record{Type: "F", ParentID: "p1", Name: "a", Path: "/x/a"}
		id, err := c.Save(ctx, rec)
		require.NoError(t, err)

		rec.ParentID = "p2"
		rec.Path = "/y/a"
		_, err = c.Save(ctx, rec)
		require.NoError(t, err)

		got, err := c.Find(ctx, ByPath("/x/a"))
		require.NoError(t, err)
		assert.Empty(t, got, "old path index must be gone")

		got, err = c.Find(ctx, ByParentID("p1"))
		require.NoError(t, err)
		assert.Empty(t, got, "old parent index must be gone")

		one, err := c.FindOne(ctx, ByPath("/y/a"))
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, id, one.ID)
		assert.Equal(t, "p2", one.ParentID)
	})

	t.Run("no uniqueness enforcement", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		_, err := c.Save(ctx, &Record{Type: "F", Name: "dup", Path: "/dup"})
		require.NoError(t, err)
		_, err = c.Save(ctx, &Record{Type: "F", Name: "dup", Path: "/dup"})
		require.NoError(t, err)

		got, err := c.Find(ctx, ByPath("/dup"))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unsupported field", func(t *testing.T) {
		c := newCollection(t)
		defer c.Close()

		_, err := c.Find(ctx, Filter{Field: "name", Value: "a"})
		assert.Error(t, err)
	})
}

func TestFilterMatches(t *testing.T) {
	t.Parallel()

	rec := &Record{ID: "1", ParentID: "0", Name: "a", Path: "/a"}
	assert.True(t, ByID("1").Matches(rec))
	assert.True(t, ByPath("/a").Matches(rec))
	assert.True(t, ByParentID("0").Matches(rec))
	assert.False(t, ByPath("/b").Matches(rec))
	assert.False(t, ByParentID("").Matches(&Record{ID: "r"}))
	assert.False(t, Filter{Field: "name", Value: "a"}.Matches(rec))
}

func TestValidCollectionName(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidCollectionName("fs"))
	assert.True(t, ValidCollectionName("fs_v2"))
	assert.False(t, ValidCollectionName(""))
	assert.False(t, ValidCollectionName("2fs"))
	assert.False(t, ValidCollectionName("fs; DROP TABLE x"))
}
