package mapper

import (
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/config"
	"github.com/dnswlt/tagsync/internal/filter"
	"github.com/dnswlt/tagsync/internal/ranger"
)

// Registry selects the Mapper for an entity by its type.
//
// A Registry is populated once at startup via Initialize (or Register) and
// must not be modified afterwards. MapEntity and Lookup are then safe for
// concurrent use without further locking.
type Registry struct {
	factories map[string]Factory
	mappers   map[string]Mapper
	// Optional condition that entities must match to be mapped.
	filter *filter.Filter
}

func NewRegistry(factories map[string]Factory) *Registry {
	return &Registry{
		factories: factories,
		mappers:   make(map[string]Mapper),
	}
}

// Register sets m as the mapper for entityType, replacing any previous one.
func (r *Registry) Register(entityType string, m Mapper) {
	r.mappers[entityType] = m
}

// SetFilter restricts MapEntity to entities matching f. A nil f disables filtering.
func (r *Registry) SetFilter(f *filter.Filter) {
	r.filter = f
}

// Initialize creates the mappers identified by builtinIDs and by the
// comma-separated customIDs, in that order, and registers each for all
// entity types it supports. Later mappers replace earlier ones for the
// same entity type.
//
// A mapper that cannot be created or initialized is logged and skipped.
// The result is false if any mapper was skipped.
func (r *Registry) Initialize(props config.Properties, builtinIDs []string, customIDs string) bool {
	ids := slices.Clone(builtinIDs)
	ids = append(ids, config.SplitList(customIDs)...)

	ok := true
	for _, id := range ids {
		m, err := r.newMapper(id, props)
		if err != nil {
			log.Printf("Failed to create resource mapper %s: %v", id, err)
			ok = false
			continue
		}
		for _, t := range m.SupportedEntityTypes() {
			r.Register(t, m)
		}
	}
	return ok
}

// InitializeFromConfig initializes the builtin mappers and the custom mappers
// listed in props, and installs the entity filter configured in props.
// An invalid filter is logged and ignored, and makes the result false.
func (r *Registry) InitializeFromConfig(props config.Properties) bool {
	ok := r.Initialize(props, BuiltinMappers, props.CustomResourceMappers())
	if expr, found := props.Lookup(config.PropEntityFilter); found {
		f, err := filter.Compile(expr)
		if err != nil {
			log.Printf("Ignoring invalid entity filter %q: %v", expr, err)
			return false
		}
		r.SetFilter(f)
	}
	return ok
}

func (r *Registry) newMapper(id string, props config.Properties) (Mapper, error) {
	factory, found := r.factories[id]
	if !found {
		return nil, fmt.Errorf("unknown mapper %q", id)
	}
	m := factory()
	if m == nil {
		return nil, fmt.Errorf("factory for %q returned no mapper", id)
	}
	if err := m.Initialize(props); err != nil {
		return nil, fmt.Errorf("failed to initialize mapper %q: %w", id, err)
	}
	return m, nil
}

// Lookup returns the mapper registered for entityType.
func (r *Registry) Lookup(entityType string) (Mapper, bool) {
	m, ok := r.mappers[entityType]
	return m, ok
}

func (r *Registry) IsEntityTypeHandled(entityType string) bool {
	_, ok := r.mappers[entityType]
	return ok
}

// EntityTypes returns the sorted names of all entity types with a registered mapper.
func (r *Registry) EntityTypes() []string {
	return slices.Sorted(maps.Keys(r.mappers))
}

// MapEntity maps e using the mapper registered for its type.
//
// It returns false if no mapper is registered for the type, if e does not
// match the registry's filter, or if the mapping failed. Mapping failures
// are logged; they never stop the caller from processing further entities.
func (r *Registry) MapEntity(e *atlas.Entity) (*ranger.ServiceResource, bool) {
	m, ok := r.mappers[e.TypeName]
	if !ok {
		return nil, false
	}
	if r.filter != nil {
		match, err := r.filter.Matches(e)
		if err != nil {
			log.Printf("Could not evaluate entity filter for %s: %v", e.GUID, err)
			return nil, false
		}
		if !match {
			return nil, false
		}
	}
	res, err := m.BuildResource(e)
	if err != nil {
		log.Printf("Could not get service resource for entity %s: %v", e.GUID, err)
		return nil, false
	}
	return res, true
}
