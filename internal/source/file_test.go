package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFileSource_Load(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"array", `[{"id":"1"},{"id":"2"}]`, 2, false},
		{"envelope", `{"data":[{"id":"1"}]}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"envelope without data", `{"items":[]}`, 0, true},
		{"not json", `id,name`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFileSource(writeFile(t, tt.body))
			got, err := src.Load(context.Background(), "inventory")
			if tt.wantErr {
				if !domain.IsInternal(err) {
					t.Fatalf("error = %v; want load failure", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d; want %d", len(got), tt.want)
			}
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := src.Load(context.Background(), "training"); !domain.IsInternal(err) {
		t.Errorf("error = %v; want load failure", err)
	}
}

func TestFileSource_ReadOnly(t *testing.T) {
	src := NewFileSource(writeFile(t, `[]`))
	if !src.ReadOnly("inventory") {
		t.Error("ReadOnly = false")
	}
	if err := src.Save(context.Background(), "inventory", nil); !domain.IsReadOnly(err) {
		t.Errorf("Save error = %v; want read only", err)
	}
	err := src.Update(context.Background(), "inventory", func(r []query.Record) ([]query.Record, error) { return r, nil })
	if !domain.IsReadOnly(err) {
		t.Errorf("Update error = %v; want read only", err)
	}
}
