package mapper

import (
	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/ranger"
)

const (
	ClassificationMapperName = "classification"
	ClassificationComponent  = "atlas"
)

// ClassificationMapper builds a wildcard resource scoped by the entity's
// classifications rather than by its path. Unclassified entities are
// rejected with ErrNoClassifications.
type ClassificationMapper struct {
	baseMapper
}

var _ Mapper = (*ClassificationMapper)(nil)

func NewClassificationMapper() *ClassificationMapper {
	return &ClassificationMapper{
		baseMapper: baseMapper{
			name:          ClassificationMapperName,
			componentName: ClassificationComponent,
			supportedTypes: []string{
				atlas.TypeDatabase, atlas.TypeSchema, atlas.TypeTable, atlas.TypeColumn,
			},
		},
	}
}

func (m *ClassificationMapper) BuildResource(e *atlas.Entity) (*ranger.ServiceResource, error) {
	in, err := m.prepare(e)
	if err != nil {
		return nil, err
	}
	classifications, err := requireClassifications(in)
	if err != nil {
		return nil, err
	}
	serviceName, err := m.serviceName(in)
	if err != nil {
		return nil, err
	}

	elements := map[string]*ranger.PolicyResource{
		ranger.ResourceEntityType:           ranger.NewPolicyResource(ranger.Wildcard),
		ranger.ResourceEntityClassification: ranger.NewPolicyResource(classifications...),
		ranger.ResourceEntity:               ranger.NewPolicyResource(ranger.Wildcard),
	}
	return ranger.NewServiceResource(e.GUID, serviceName, elements), nil
}
