// Package file provides file-based persistence for workflows, templates and executions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dukex/operion-studio/pkg/persistence"
)

const (
	workflowsDir  = "workflows"
	executionsDir = "executions"
)

// Persistence implements the persistence.Persistence interface using the file
// system. Each entity is one JSON file named after its id.
type Persistence struct {
	root string

	mu sync.Mutex
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

var _ persistence.Persistence = (*Persistence)(nil)

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) path(dir string, id int64) string {
	return filepath.Join(fp.root, dir, strconv.FormatInt(id, 10)+".json")
}

// ids lists the ids stored in dir in ascending order. Files whose name is not
// a positive integer are ignored.
func (fp *Persistence) ids(dir string) ([]int64, error) {
	matches, err := fs.Glob(os.DirFS(filepath.Join(fp.root, dir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	ids := make([]int64, 0, len(matches))

	for _, name := range matches {
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil || id <= 0 {
			continue
		}

		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids, nil
}

func (fp *Persistence) nextID(dir string) (int64, error) {
	ids, err := fp.ids(dir)
	if err != nil {
		return 0, err
	}

	var highest int64
	for _, id := range ids {
		highest = max(highest, id)
	}

	return highest + 1, nil
}

// read decodes the file of id into out. It reports false when the file does not exist.
func (fp *Persistence) read(dir string, id int64, out any) (bool, error) {
	body, err := os.ReadFile(fp.path(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s/%d: %w", dir, id, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%d: %w", dir, id, err)
	}

	return true, nil
}

func (fp *Persistence) write(dir string, id int64, value any) error {
	if err := os.MkdirAll(filepath.Join(fp.root, dir), 0o750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%d: %w", dir, id, err)
	}

	return os.WriteFile(fp.path(dir, id), data, 0o600)
}
