package storage

import (
	"fmt"

	"diskmeta/internal/common"
)

// Kind discriminates files from directories. The value is the type tag
// persisted in records.
type Kind string

const (
	KindFile      Kind = "F"
	KindDirectory Kind = "D"
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return fmt.Sprintf("kind(%q)", string(k))
	}
}

// Node represents file/directory metadata
type Node struct {
	ID       string // store-assigned, empty until saved
	Kind     Kind
	Name     string
	Path     string
	ParentID string // empty for the root
}

// NewNode builds a node named name. When parent is a directory the node
// is placed under it; with no parent the node hangs off the root path
// without a parent id.
func NewNode(name string, kind Kind, parent *Node) *Node {
	n := &Node{Kind: kind, Name: name}
	parentPath := common.RootPath
	if parent != nil && parent.IsDir() {
		n.ParentID = parent.ID
		parentPath = parent.Path
	}
	n.Path = common.BuildChildPath(parentPath, name)
	return n
}

// NewNodeAt builds a node with an explicit path and no parent.
func NewNodeAt(name string, kind Kind, path string) *Node {
	return &Node{Kind: kind, Name: name, Path: path}
}

// NewRoot returns the root directory: empty name, empty path, no parent.
func NewRoot() *Node {
	return &Node{Kind: KindDirectory, Name: "", Path: common.RootPath}
}

// IsDir returns true if the node is a directory
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// IsFile returns true if the node is a regular file
func (n *Node) IsFile() bool {
	return n.Kind == KindFile
}

// IsRoot returns true for the root directory
func (n *Node) IsRoot() bool {
	return n.IsDir() && n.Path == common.RootPath && n.ParentID == ""
}

// Record returns the storage-ready representation of the node.
func (n *Node) Record() *Record {
	return &Record{
		ID:       n.ID,
		Type:     string(n.Kind),
		ParentID: n.ParentID,
		Name:     n.Name,
		Path:     n.Path,
	}
}

// NodeFromRecord rebuilds a node from a stored record, dispatching on the
// record's type tag. Records without a type are files; unknown tags are
// rejected.
func NodeFromRecord(rec *Record) (*Node, error) {
	if rec == nil {
		return nil, common.ErrNotFound
	}

	var kind Kind
	switch Kind(rec.Type) {
	case "", KindFile:
		kind = KindFile
	case KindDirectory:
		kind = KindDirectory
	default:
		return nil, fmt.Errorf("%w: record %s has unknown type %q", common.ErrMalformedRecord, rec.ID, rec.Type)
	}

	return &Node{
		ID:       rec.ID,
		Kind:     kind,
		Name:     rec.Name,
		Path:     rec.Path,
		ParentID: rec.ParentID,
	}, nil
}
