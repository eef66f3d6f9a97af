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

// Package fsmeta is the metadata client of the disk: it creates, looks up
// and lists files and directories while keeping the tree consistent.
//
// Every operation is a self-contained request against the store. The
// existence checks and the write that follows are not atomic, so two
// clients racing to create the same name can both succeed.
package fsmeta

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"diskmeta/internal/common"
	"diskmeta/internal/storage"
)

// NodeInfo is the storage view of a node returned by GetInfo.
type NodeInfo = storage.Record

// Client enforces the tree invariants on top of a storage.Store.
type Client struct {
	store  *storage.Store
	logger logrus.FieldLogger
}

// NewClient returns a client backed by store.
func NewClient(store *storage.Store, logger logrus.FieldLogger) *Client {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Client{store: store, logger: logger}
}

// Store returns the underlying store.
func (c *Client) Store() *storage.Store {
	return c.store
}

// Initialize creates the root node unless it already exists. Reports
// whether a root was created.
func (c *Client) Initialize(ctx context.Context) (bool, error) {
	root, err := c.store.FindByPath(ctx, common.RootPath)
	if err != nil {
		return false, fmt.Errorf("failed to look up root: %w", err)
	}
	if root != nil {
		c.logger.WithField("id", root.ID).Debug("Root already exists")
		return false, nil
	}
	root = storage.NewRoot()
	if _, err := c.store.Save(ctx, root); err != nil {
		return false, fmt.Errorf("failed to create root: %w", err)
	}
	c.logger.WithField("id", root.ID).Info("Created root")
	return true, nil
}

// CreateNode creates a node of the given kind named name inside the
// directory at parentPath.
func (c *Client) CreateNode(ctx context.Context, parentPath, name string, kind storage.Kind) (*storage.Node, error) {
	const op = "create"
	c.logger.WithFields(logrus.Fields{"kind": kind, "path": parentPath, "name": name}).Debug("Creating node")

	if !common.ValidName(name) {
		return nil, common.NewFSError(op, name, common.ErrInvalidName)
	}

	parentPath = common.StripTrailingSeparator(parentPath)
	parent, err := c.store.FindByPath(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, common.NewFSError(op, parentPath, common.ErrParentNotFound)
	}
	if !parent.IsDir() {
		return nil, common.NewFSError(op, parentPath, common.ErrNotDir)
	}

	children, err := c.store.FindChildren(ctx, parent)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Name == name {
			return nil, common.NewFSError(op, child.Path, common.ErrNodeExists)
		}
	}

	node := storage.NewNode(name, kind, parent)
	if _, err := c.store.Save(ctx, node); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{"id": node.ID, "path": node.Path}).Info("Created " + kind.String())
	return node, nil
}

// CreateDirectory creates a directory named name under path.
func (c *Client) CreateDirectory(ctx context.Context, path, name string) (*storage.Node, error) {
	return c.CreateNode(ctx, path, name, storage.KindDirectory)
}

// CreateFile creates a file named name under path.
func (c *Client) CreateFile(ctx context.Context, path, name string) (*storage.Node, error) {
	return c.CreateNode(ctx, path, name, storage.KindFile)
}

// GetInfo returns everything known about the node at path.
func (c *Client) GetInfo(ctx context.Context, path string) (*NodeInfo, error) {
	path = common.StripTrailingSeparator(path)
	node, err := c.store.FindByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, common.NewFSError("info", path, common.ErrFileNotFound)
	}
	return node.Record(), nil
}

// GetInfoByID returns everything known about the node with the given id.
func (c *Client) GetInfoByID(ctx context.Context, id string) (*NodeInfo, error) {
	node, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, common.NewFSError("info", "id:"+id, common.ErrFileNotFound)
	}
	return node.Record(), nil
}

// ListDirectory returns the names of the nodes inside the directory at
// path, ordered by name.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]string, error) {
	const op = "list"
	path = common.StripTrailingSeparator(path)
	node, err := c.store.FindByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, common.NewFSError(op, path, common.ErrFileNotFound)
	}
	if !node.IsDir() {
		return nil, common.NewFSError(op, path, common.ErrNotDir)
	}

	children, err := c.store.FindChildren(ctx, node)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.Name)
	}
	return names, nil
}

// Parent returns the storage view of the directory holding path.
func (c *Client) Parent(ctx context.Context, path string) (*NodeInfo, error) {
	path = common.StripTrailingSeparator(path)
	parent, err := c.store.FindParent(ctx, path)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, common.NewFSError("parent", path, common.ErrParentNotFound)
	}
	return parent.Record(), nil
}
