package source

import (
	"context"
	"fmt"
	"os"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// FileSource serves one JSON collection file as the collection of every
// entity. The file uses the same shapes as a remote endpoint. It is read only.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context, entity string) ([]query.Record, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, domain.LoadFailed(entity, err)
	}
	records, err := decodeCollection(body)
	if err != nil {
		return nil, domain.LoadFailed(entity, fmt.Errorf("%s: %w", s.path, err))
	}
	return records, nil
}

func (s *FileSource) Save(_ context.Context, entity string, _ []query.Record) error {
	return s.readOnly(entity)
}

func (s *FileSource) Update(_ context.Context, entity string, _ func([]query.Record) ([]query.Record, error)) error {
	return s.readOnly(entity)
}

func (s *FileSource) readOnly(entity string) error {
	return domain.NewAppError(domain.CodeReadOnly, entity+" records are loaded from "+s.path+" and are read only", nil)
}

func (s *FileSource) ReadOnly(string) bool { return true }
