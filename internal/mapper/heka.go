package mapper

import (
	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/qname"
	"github.com/dnswlt/tagsync/internal/ranger"
)

const (
	HekaMapperName = "heka"
	// HekaServiceName is used for all clusters; service name overrides do not apply.
	HekaServiceName = "heka"
	// Appended to a qualified name to also match all descendants.
	AcceptDescendants = qname.Delimiter + ranger.Wildcard
)

// HekaMapper builds a resource that matches an entity and all of its
// descendants under the fixed heka service. Like ClassificationMapper it
// only maps classified entities.
type HekaMapper struct {
	baseMapper
}

var _ Mapper = (*HekaMapper)(nil)

func NewHekaMapper() *HekaMapper {
	return &HekaMapper{
		baseMapper: baseMapper{
			name:          HekaMapperName,
			componentName: HekaServiceName,
			supportedTypes: []string{
				atlas.TypeDatabase, atlas.TypeSchema, atlas.TypeTable, atlas.TypeColumn,
			},
		},
	}
}

func (m *HekaMapper) BuildResource(e *atlas.Entity) (*ranger.ServiceResource, error) {
	in, err := m.prepare(e)
	if err != nil {
		return nil, err
	}
	if _, err := requireClassifications(in); err != nil {
		return nil, err
	}

	elements := map[string]*ranger.PolicyResource{
		ranger.ResourceEntityType: ranger.NewPolicyResource(ranger.Wildcard),
		ranger.ResourceEntity:     ranger.NewPolicyResource(in.qualifiedName, in.qualifiedName+AcceptDescendants),
	}
	return ranger.NewServiceResource(e.GUID, HekaServiceName, elements), nil
}
