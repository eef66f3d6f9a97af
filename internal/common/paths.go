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

import "strings"

// Separator joins path components.
const Separator = "/"

// RootPath is the path of the root node.
const RootPath = ""

// StripTrailingSeparator removes trailing separators from a path.
// "/etc/nginx/" becomes "/etc/nginx" and "/" becomes the root path.
func StripTrailingSeparator(path string) string {
	return strings.TrimRight(path, Separator)
}

// BuildChildPath returns the path of a child named name under parentPath.
// Children of the root get "/name".
func BuildChildPath(parentPath, name string) string {
	return parentPath + Separator + name
}

// SplitParentAndName splits a path on its last separator into the parent
// path and the child name. "/etc/nginx/nginx.conf" yields ("/etc/nginx",
// "nginx.conf"); "/" yields two empty strings and callers must treat that
// as the root. A path without a separator is a bare name under the root.
func SplitParentAndName(path string) (string, string) {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return RootPath, path
	}
	return path[:idx], path[idx+1:]
}

// IsRootPath reports whether path addresses the root once trailing
// separators are removed.
func IsRootPath(path string) bool {
	return StripTrailingSeparator(path) == RootPath
}

// ValidName reports whether name may be used for a new node.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	// NUL terminates index keys in the badger backend
	return !strings.Contains(name, Separator) && !strings.ContainsRune(name, 0)
}
