package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/google/go-cmp/cmp"
)

func TestReadEntities(t *testing.T) {
	t.Run("single and list documents", func(t *testing.T) {
		content := `
typeName: Table
guid: g-1
attributes:
  qualifiedName: default/snowflake/conn/DB/PUBLIC/ORDERS
classifications:
  - typeName: PII
---
- typeName: Schema
  guid: g-2
  attributes:
    qualifiedName: default/snowflake/conn/DB/PUBLIC
- typeName: Database
  guid: g-3
  attributes:
    qualifiedName: default/snowflake/conn/DB
`
		st, tmpfile := writeTempFile(t, "entities.yaml", content)

		entities, err := ReadEntities(st, filepath.Base(tmpfile))
		if err != nil {
			t.Fatalf("ReadEntities() error = %v, wantErr %v", err, false)
		}
		want := []*atlas.Entity{
			{
				TypeName:        "Table",
				GUID:            "g-1",
				Attributes:      map[string]any{"qualifiedName": "default/snowflake/conn/DB/PUBLIC/ORDERS"},
				Classifications: []atlas.Classification{{Name: "PII"}},
			},
			{
				TypeName:   "Schema",
				GUID:       "g-2",
				Attributes: map[string]any{"qualifiedName": "default/snowflake/conn/DB/PUBLIC"},
			},
			{
				TypeName:   "Database",
				GUID:       "g-3",
				Attributes: map[string]any{"qualifiedName": "default/snowflake/conn/DB"},
			},
		}
		if diff := cmp.Diff(want, entities); diff != "" {
			t.Errorf("ReadEntities() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json", func(t *testing.T) {
		content := `[{"typeName": "Column", "guid": "c-1", "attributes": {"qualifiedName": "t/v/c/d/s/t/col"}, "classifications": [{"typeName": "PCI"}]}]`
		st, tmpfile := writeTempFile(t, "entities.json", content)

		entities, err := ReadEntities(st, filepath.Base(tmpfile))
		if err != nil {
			t.Fatalf("ReadEntities() error = %v", err)
		}
		if len(entities) != 1 {
			t.Fatalf("len(entities) = %d, want %d", len(entities), 1)
		}
		if got := entities[0].ClassificationNames(); len(got) != 1 || got[0] != "PCI" {
			t.Errorf("ClassificationNames() = %v, want [PCI]", got)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		st, tmpfile := writeTempFile(t, "empty.yaml", "")

		entities, err := ReadEntities(st, filepath.Base(tmpfile))
		if err != nil {
			t.Fatalf("ReadEntities() error = %v, wantErr %v", err, false)
		}
		if len(entities) != 0 {
			t.Errorf("len(entities) = %d, want %d", len(entities), 0)
		}
	})

	t.Run("scalar document", func(t *testing.T) {
		st, tmpfile := writeTempFile(t, "scalar.yaml", "just a string\n")

		_, err := ReadEntities(st, filepath.Base(tmpfile))
		if err == nil {
			t.Errorf("ReadEntities() error = %v, wantErr %v", err, true)
		}
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := ReadEntities(NewDiskStore("."), "non-existent-file.yaml")
		if err == nil {
			t.Errorf("ReadEntities() error = %v, wantErr %v", err, true)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		content := `
invalid: yaml: here
`
		st, tmpfile := writeTempFile(t, "invalid.yaml", content)

		_, err := ReadEntities(st, filepath.Base(tmpfile))
		if err == nil {
			t.Errorf("ReadEntities() error = %v, wantErr %v", err, true)
		}
	})
}

func TestDiskStore_EscapesRoot(t *testing.T) {
	st := NewDiskStore(t.TempDir())
	if _, err := st.ReadFile("../outside.yml"); err == nil {
		t.Error("ReadFile(../outside.yml) succeeded, want error")
	}
	if _, err := st.ListFiles("../"); err == nil {
		t.Error("ListFiles(../) succeeded, want error")
	}
}

func TestNotificationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"feed/b.yml", "feed/a.json", "feed/sub/c.yaml", "feed/README.md"} {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := NotificationFiles(NewDiskStore(dir), "feed")
	if err != nil {
		t.Fatalf("NotificationFiles() error = %v", err)
	}
	want := []string{
		filepath.Join("feed", "a.json"),
		filepath.Join("feed", "b.yml"),
		filepath.Join("feed", "sub", "c.yaml"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("NotificationFiles() mismatch (-want +got):\n%s", diff)
	}
}

func writeTempFile(t *testing.T, name, content string) (Store, string) {
	t.Helper()
	dir := t.TempDir()
	tmpfile := filepath.Join(dir, name)
	err := os.WriteFile(tmpfile, []byte(content), 0666)
	if err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return NewDiskStore(dir), tmpfile
}
