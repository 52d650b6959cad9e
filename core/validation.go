// Copyright 2025 Poiesic Systems
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

package core

import (
	"fmt"
	"strings"
)

// ValidateTable validates a Table according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - every foreign key pairs constrained and referred columns one to one
//
// NOT validated:
//   - Columns (a table may legitimately report none)
//   - ReferredTable existence (the store is authoritative)
func ValidateTable(table *Table) error {
	if table == nil {
		return fmt.Errorf("%w: table is nil", ErrInvalidTable)
	}

	if strings.TrimSpace(table.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTable, ErrEmptyTableName)
	}

	for i, fk := range table.ForeignKeys {
		if len(fk.ConstrainedColumns) != len(fk.ReferredColumns) {
			return fmt.Errorf("%w: %s foreign key %d: %w", ErrInvalidTable, table.Name, i, ErrForeignKeyArity)
		}
	}

	return nil
}

// ValidateSnapshot validates every table of the snapshot and checks that
// each table is stored under its own name.
func ValidateSnapshot(snapshot *SchemaSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidTable)
	}
	for name, table := range snapshot.Tables {
		if table.Name != name {
			return fmt.Errorf("%w: table %q stored under key %q", ErrInvalidTable, table.Name, name)
		}
		if err := ValidateTable(&table); err != nil {
			return err
		}
	}
	return nil
}
