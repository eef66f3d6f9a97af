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
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"diskmeta/internal/common"
)

// Store translates node operations into collection queries. It holds no
// state besides the collection and logger, and performs no uniqueness or
// parent checks; that is the caller's job.
type Store struct {
	coll   Collection
	logger logrus.FieldLogger
}

// NewStore wraps coll. A nil logger discards output.
func NewStore(coll Collection, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = discardLogger()
	}
	return &Store{coll: coll, logger: logger}
}

// Collection returns the underlying collection.
func (s *Store) Collection() Collection {
	return s.coll
}

// Close closes the underlying collection.
func (s *Store) Close() error {
	return s.coll.Close()
}

// Save upserts node and records the assigned id on it.
func (s *Store) Save(ctx context.Context, node *Node) (string, error) {
	s.logger.WithFields(logrus.Fields{"name": node.Name, "path": node.Path}).Debug("Saving node")
	id, err := s.coll.Save(ctx, node.Record())
	if err != nil {
		return "", err
	}
	node.ID = id
	return id, nil
}

// FindChildren returns the nodes whose parent is dir, ordered by name.
// Every call queries the collection again.
func (s *Store) FindChildren(ctx context.Context, dir *Node) ([]*Node, error) {
	if dir == nil {
		return nil, fmt.Errorf("find children: %w", common.ErrNotFound)
	}
	s.logger.WithField("path", dir.Path).Debug("Getting children")
	if dir.ID == "" {
		return nil, nil
	}

	recs, err := s.coll.Find(ctx, ByParentID(dir.ID))
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(recs))
	for _, rec := range recs {
		node, err := NodeFromRecord(rec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes, nil
}

// FindByPath returns the node at path (trailing separators ignored), or
// nil if there is none. Paths are expected to be unique.
func (s *Store) FindByPath(ctx context.Context, path string) (*Node, error) {
	path = common.StripTrailingSeparator(path)
	s.logger.WithField("path", path).Debug("Getting node by path")
	return s.findOne(ctx, ByPath(path))
}

// FindByID returns the node with the given id, or nil if there is none.
func (s *Store) FindByID(ctx context.Context, id string) (*Node, error) {
	s.logger.WithField("id", id).Debug("Getting node by id")
	return s.findOne(ctx, ByID(id))
}

// FindParent returns the directory holding the node at path, or nil if
// it does not exist. The root has no parent.
func (s *Store) FindParent(ctx context.Context, path string) (*Node, error) {
	s.logger.WithField("path", path).Debug("Getting parent")
	path = common.StripTrailingSeparator(path)
	if path == common.RootPath {
		return nil, nil
	}
	parentPath, _ := common.SplitParentAndName(path)
	return s.FindByPath(ctx, parentPath)
}

func (s *Store) findOne(ctx context.Context, filter Filter) (*Node, error) {
	rec, err := s.coll.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return NodeFromRecord(rec)
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
