// Package registry holds the metadata of deletable content types and
// their taxonomies, loaded from a JSON registry file.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/contentools/reaper/pkg/models"
)

// ErrInvalidSelection indicates an unknown content type or taxonomy, or a
// taxonomy that is not registered for the content type.
var ErrInvalidSelection = errors.New("invalid content type / taxonomy selection")

// IsInvalidSelection reports whether err is a selection validation error.
func IsInvalidSelection(err error) bool {
	return errors.Is(err, ErrInvalidSelection)
}

// Registry answers which content types may be bulk-deleted and which
// taxonomies each of them carries.
type Registry struct {
	logger *slog.Logger
	types  map[string]*models.ContentType
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		types:  make(map[string]*models.ContentType),
	}
}

// LoadFile reads and validates a registry file, replacing the current
// contents. The file must conform to the embedded JSON Schema.
func (r *Registry) LoadFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry file: %w", err)
	}

	return r.Load(payload)
}

// Load validates and installs a JSON registry document.
func (r *Registry) Load(payload []byte) error {
	err := validateDocument(payload)
	if err != nil {
		return err
	}

	var doc struct {
		ContentTypes []*models.ContentType `json:"content_types"`
	}

	err = json.Unmarshal(payload, &doc)
	if err != nil {
		return fmt.Errorf("failed to parse registry document: %w", err)
	}

	types := make(map[string]*models.ContentType, len(doc.ContentTypes))
	for _, contentType := range doc.ContentTypes {
		types[contentType.ID] = contentType
	}

	r.types = types
	r.logger.Info("Loaded content type registry", "types", len(types))

	return nil
}

// Register adds a single content type, mainly for tests.
func (r *Registry) Register(contentType *models.ContentType) {
	r.types[contentType.ID] = contentType
}

// Types returns all registered content types sorted by label.
func (r *Registry) Types() []*models.ContentType {
	types := make([]*models.ContentType, 0, len(r.types))
	for _, contentType := range r.types {
		types = append(types, contentType)
	}

	slices.SortFunc(types, func(a, b *models.ContentType) int {
		return strings.Compare(a.Label, b.Label)
	})

	return types
}

// Lookup returns the content type by ID, or nil when unknown.
func (r *Registry) Lookup(contentTypeID string) *models.ContentType {
	return r.types[contentTypeID]
}

// ValidatePair checks that the content type is known and the taxonomy is
// registered for it.
func (r *Registry) ValidatePair(contentTypeID, taxonomyID string) error {
	contentType := r.types[contentTypeID]
	if contentType == nil {
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidSelection, contentTypeID)
	}

	if !contentType.HasTaxonomy(taxonomyID) {
		return fmt.Errorf("%w: taxonomy %q is not registered for content type %q",
			ErrInvalidSelection, taxonomyID, contentTypeID)
	}

	return nil
}

// HealthCheck reports whether the registry holds at least one type.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.types) == 0 {
		return "Registry is empty", false
	}

	return fmt.Sprintf("Registry holds %d content types", len(r.types)), true
}
