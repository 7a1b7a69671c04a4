package cmd

import (
	"fmt"
	"log/slog"

	"github.com/contentools/reaper/pkg/registry"
)

// NewRegistry loads the content-type registry from the given file.
func NewRegistry(logger *slog.Logger, registryFile string) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)

	err := reg.LoadFile(registryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry %q: %w", registryFile, err)
	}

	return reg, nil
}
