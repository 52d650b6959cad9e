package core

import (
	"encoding/json"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSchemaSnapshot_TableNames(t *testing.T) {
	s := NewSchemaSnapshot()
	s.Tables["orders"] = Table{Name: "orders"}
	s.Tables["customers"] = Table{Name: "customers"}

	names := s.TableNames()
	if len(names) != 2 || names[0] != "customers" || names[1] != "orders" {
		t.Errorf("TableNames() = %v, want [customers orders]", names)
	}
	if !s.HasTable("orders") || s.HasTable("missing") {
		t.Errorf("HasTable() gave wrong membership")
	}
}

func TestSchemaSnapshot_IsEmpty(t *testing.T) {
	var nilSnapshot *SchemaSnapshot
	if !nilSnapshot.IsEmpty() {
		t.Errorf("nil snapshot should be empty")
	}
	if !NewSchemaSnapshot().IsEmpty() {
		t.Errorf("new snapshot should be empty")
	}
}

func TestSchemaSnapshot_JSONShape(t *testing.T) {
	s := NewSchemaSnapshot()
	s.Tables["employees"] = Table{
		Name:    "employees",
		Columns: []Column{{Name: "name", Type: "TEXT"}},
		ForeignKeys: []ForeignKey{{
			ConstrainedColumns: []string{"dept_id"},
			ReferredTable:      "departments",
			ReferredColumns:    []string{"id"},
		}},
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"tables":{"employees":{"columns":[{"name":"name","type":"TEXT"}],"foreign_keys":[{"constrained_columns":["dept_id"],"referred_table":"departments","referred_columns":["id"]}]}}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}
