package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/persistence/file"
)

var ErrUnsupportedPersistence = errors.New("unsupported persistence provider")

// NewPersistence opens the store named by databaseURL. A bare path or a
// file:// URL selects the file store, creating its directory.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	provider, location, found := strings.Cut(databaseURL, "://")
	if !found {
		provider, location = "file", databaseURL
	}

	switch provider {
	case "file":
		if location == "" {
			return nil, fmt.Errorf("%w: empty file path", ErrUnsupportedPersistence)
		}

		if err := os.MkdirAll(location, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		return file.NewPersistence(location), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPersistence, provider)
	}
}
