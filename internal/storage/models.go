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

import "github.com/uptrace/bun"

// Bun ORM models for the SQL collection backend.

// SchemaInfoModel represents the schema_info table
type SchemaInfoModel struct {
	bun.BaseModel `bun:"table:schema_info"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// NodeModel represents one row of a node collection table. The table name
// defaults to "fs"; other collections are addressed with ModelTableExpr.
type NodeModel struct {
	bun.BaseModel `bun:"table:fs,alias:n"`

	ID       string `bun:"id,pk"`
	Type     string `bun:"type,nullzero"`
	ParentID string `bun:"parent_id,nullzero"` // NULL for the root
	Name     string `bun:"name,notnull"`
	Path     string `bun:"path,notnull"`
}

// ToRecord converts a NodeModel to a Record
func (m *NodeModel) ToRecord() *Record {
	return &Record{
		ID:       m.ID,
		Type:     m.Type,
		ParentID: m.ParentID,
		Name:     m.Name,
		Path:     m.Path,
	}
}

// NodeModelFromRecord converts a Record to a NodeModel
func NodeModelFromRecord(rec *Record) *NodeModel {
	return &NodeModel{
		ID:       rec.ID,
		Type:     rec.Type,
		ParentID: rec.ParentID,
		Name:     rec.Name,
		Path:     rec.Path,
	}
}

// column maps a record field to its SQL column.
func column(f Field) string {
	if f == FieldID {
		return "id"
	}
	return string(f)
}
