// Package mapper converts catalog entities into policy engine service resources.
//
// A Mapper implements one naming/policy convention for a set of entity types.
// Mappers are constructed by identifier from a factory table and collected in
// a Registry that dispatches on the entity type.
package mapper

import (
	"fmt"
	"slices"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/config"
	"github.com/dnswlt/tagsync/internal/qname"
	"github.com/dnswlt/tagsync/internal/ranger"
)

// Mapper converts one catalog entity into a service resource.
//
// Implementations must be safe for concurrent use after Initialize returned.
type Mapper interface {
	// Name returns the identifier under which the mapper is registered
	// in the factory table.
	Name() string
	// SupportedEntityTypes returns the entity type names this mapper handles.
	SupportedEntityTypes() []string
	// Initialize is called once, before the first call to BuildResource.
	Initialize(props config.Properties) error
	// BuildResource maps e. Errors are of type *MappingError.
	BuildResource(e *atlas.Entity) (*ranger.ServiceResource, error)
}

// baseMapper holds the state and validation shared by all mappers.
type baseMapper struct {
	name           string
	componentName  string
	supportedTypes []string
	props          config.Properties
}

func (m *baseMapper) Name() string {
	return m.name
}

func (m *baseMapper) SupportedEntityTypes() []string {
	return slices.Clone(m.supportedTypes)
}

func (m *baseMapper) Initialize(props config.Properties) error {
	if props == nil {
		props = config.Properties{}
	}
	m.props = props
	return nil
}

// mappingInput is the decomposed form of an entity that passed
// the common preconditions.
type mappingInput struct {
	entity        *atlas.Entity
	qualifiedName string
	clusterName   string
}

func (in *mappingInput) fail(reason error, format string, args ...any) *MappingError {
	return &MappingError{
		Reason:        reason,
		EntityType:    in.entity.TypeName,
		GUID:          in.entity.GUID,
		QualifiedName: in.qualifiedName,
		Message:       fmt.Sprintf(format, args...),
	}
}

// prepare checks the preconditions common to all mappers.
func (m *baseMapper) prepare(e *atlas.Entity) (*mappingInput, error) {
	qn, ok := e.QualifiedName()
	if !ok {
		return nil, &MappingError{
			Reason:     ErrMissingAttribute,
			EntityType: e.TypeName,
			GUID:       e.GUID,
			Message:    fmt.Sprintf("attribute %q not found in entity", atlas.AttrQualifiedName),
		}
	}
	in := &mappingInput{entity: e, qualifiedName: qn}
	if p, ok := qname.ResourcePath(qn); !ok || p == "" {
		return nil, in.fail(ErrMalformedQualifiedName, "resource not found in attribute %q", atlas.AttrQualifiedName)
	}
	cluster, ok := qname.ClusterName(qn)
	if !ok {
		return nil, in.fail(ErrMalformedQualifiedName, "cluster name not found in attribute %q", atlas.AttrQualifiedName)
	}
	in.clusterName = cluster
	if !slices.Contains(m.supportedTypes, e.TypeName) {
		return nil, in.fail(ErrUnsupportedEntityType, "mapper %s does not support it", m.name)
	}
	return in, nil
}

// serviceName resolves the service name for the given cluster.
func (m *baseMapper) serviceName(in *mappingInput) (string, error) {
	name := ResolveServiceName(in.clusterName, m.componentName, m.props)
	if name == "" {
		return "", in.fail(ErrMalformedQualifiedName, "could not resolve service name")
	}
	return name, nil
}

// requireClassifications returns the entity's classification names,
// or ErrNoClassifications if there are none.
func requireClassifications(in *mappingInput) ([]string, error) {
	names := in.entity.ClassificationNames()
	if len(names) == 0 {
		return nil, in.fail(ErrNoClassifications, "only classified entities are mapped")
	}
	return names, nil
}
