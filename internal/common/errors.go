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

package common

import "errors"

// File system errors returned by the metadata client.
var (
	ErrInvalidName    = errors.New("invalid node name")
	ErrParentNotFound = errors.New("parent not found")
	ErrNodeExists     = errors.New("node already exists")
	ErrFileNotFound   = errors.New("file not found")
	ErrNotDir         = errors.New("not a directory")
)

// Store-level errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrMalformedRecord  = errors.New("malformed record")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// fsErrors is the file system error family.
var fsErrors = []error{
	ErrInvalidName,
	ErrParentNotFound,
	ErrNodeExists,
	ErrFileNotFound,
	ErrNotDir,
}

// FSError records a failed file system operation and the path it was
// applied to, like os.PathError.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return e.Op + " " + quotePath(e.Path) + ": " + e.Err.Error()
}

func (e *FSError) Unwrap() error { return e.Err }

// NewFSError wraps err for op on path.
func NewFSError(op, path string, err error) *FSError {
	return &FSError{Op: op, Path: path, Err: err}
}

// IsFilesystemError reports whether err belongs to the file system error
// family (as opposed to store connectivity or programming errors).
func IsFilesystemError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range fsErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// quotePath makes the root path visible in messages.
func quotePath(path string) string {
	if path == RootPath {
		return `""`
	}
	return path
}
