// Package registry maintains the process-wide catalog of activity kinds:
// their constructors, configuration schemas and display metadata.
package registry

import (
	"fmt"
	"sort"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/pkg/activitykind"

	"github.com/xeipuuv/gojsonschema"
)

// Metadata is the display metadata of a registered kind.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ValidationResult reports the outcome of configuration validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type entry struct {
	constructor activitykind.Constructor
	schema      map[string]any
	compiled    *gojsonschema.Schema
	metadata    Metadata
}

// Registry maps kind identifiers to their implementation, schema and
// metadata. Register all kinds during startup; after that the registry is
// read-only and safe for concurrent readers without locking. There is no
// unregister operation: tests construct a fresh Registry instead.
type Registry struct {
	kinds map[string]*entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]*entry)}
}

// Register adds an activity kind to the registry. It fails with
// DUPLICATE_KIND when the identifier is already present and INVALID_KIND when
// the constructor or schema does not satisfy the contract.
func (r *Registry) Register(kindID string, constructor activitykind.Constructor, schema map[string]any, name, description, version string) error {
	if _, exists := r.kinds[kindID]; exists {
		return apperrors.NewDuplicateKind(kindID)
	}
	if constructor == nil {
		return apperrors.NewInvalidKind(kindID, "constructor is nil")
	}
	if instance := constructor("", map[string]any{}); instance == nil {
		return apperrors.NewInvalidKind(kindID, "constructor returned nil instance")
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return apperrors.NewInvalidKind(kindID, fmt.Sprintf("schema does not compile: %v", err))
	}

	if name == "" {
		name = kindID
	}
	if description == "" {
		description = fmt.Sprintf("%s activity", kindID)
	}
	if version == "" {
		version = "1.0.0"
	}

	r.kinds[kindID] = &entry{
		constructor: constructor,
		schema:      schema,
		compiled:    compiled,
		metadata: Metadata{
			ID:          kindID,
			Name:        name,
			Description: description,
			Version:     version,
		},
	}
	return nil
}

// IsRegistered reports whether the kind identifier is known.
func (r *Registry) IsRegistered(kindID string) bool {
	_, ok := r.kinds[kindID]
	return ok
}

// Schema returns the JSON schema for the kind's configuration.
func (r *Registry) Schema(kindID string) (map[string]any, error) {
	e, ok := r.kinds[kindID]
	if !ok {
		return nil, apperrors.NewUnknownKind(kindID)
	}
	return e.schema, nil
}

// Metadata returns the display metadata for the kind.
func (r *Registry) Metadata(kindID string) (Metadata, error) {
	e, ok := r.kinds[kindID]
	if !ok {
		return Metadata{}, apperrors.NewUnknownKind(kindID)
	}
	return e.metadata, nil
}

// List returns metadata for every registered kind, sorted by identifier.
func (r *Registry) List() []Metadata {
	out := make([]Metadata, 0, len(r.kinds))
	for _, e := range r.kinds {
		out = append(out, e.metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create instantiates the kind for an activity. activityID may be empty for
// activities that have not been persisted yet.
func (r *Registry) Create(kindID, activityID string, config map[string]any) (activitykind.ActivityKind, error) {
	e, ok := r.kinds[kindID]
	if !ok {
		return nil, apperrors.NewUnknownKind(kindID)
	}
	return e.constructor(activityID, config), nil
}

// ValidateConfig checks a configuration document against the kind's compiled
// JSON schema and then against the kind's own semantic validation.
func (r *Registry) ValidateConfig(kindID string, config map[string]any) (ValidationResult, error) {
	e, ok := r.kinds[kindID]
	if !ok {
		return ValidationResult{}, apperrors.NewUnknownKind(kindID)
	}

	result := ValidationResult{Valid: true}

	schemaResult, err := e.compiled.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("configuration is not a valid document: %v", err))
		return result, nil
	}
	for _, issue := range schemaResult.Errors() {
		result.Valid = false
		result.Errors = append(result.Errors, issue.String())
	}

	if result.Valid {
		instance := e.constructor("", config)
		if !instance.ValidateConfig(config) {
			result.Valid = false
			result.Errors = append(result.Errors, "configuration failed kind-specific validation")
		}
	}

	return result, nil
}
