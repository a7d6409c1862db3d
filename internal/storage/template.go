package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

// Template operations (filesystem-backed)

func (r *RedisStorage) templatesDir() string {
	return filepath.Join(r.dataDir, "templates")
}

func (r *RedisStorage) ListTemplates(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.templatesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStorage) GetTemplate(ctx context.Context, name string) (*actor.Sheet, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, storage.ErrNotFound
	}
	path := filepath.Join(r.templatesDir(), name+".json")
	r.logger.Debug("Loading template", "name", name, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var s actor.Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	if s.Template == "" {
		s.Template = name
	}
	return &s, nil
}
