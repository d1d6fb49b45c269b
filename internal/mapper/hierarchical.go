package mapper

import (
	"strings"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/qname"
	"github.com/dnswlt/tagsync/internal/ranger"
)

const (
	HierarchicalMapperName = "hierarchical"
	HierarchicalComponent  = "atlan"
)

// hierarchyLevel assigns a qualified name segment to a resource type.
type hierarchyLevel struct {
	segment  int
	resource string
}

var hierarchy = []hierarchyLevel{
	{qname.IdxDatabase, ranger.ResourceDatabase},
	{qname.IdxSchema, ranger.ResourceSchema},
	{qname.IdxTable, ranger.ResourceTable},
	{qname.IdxColumn, ranger.ResourceColumn},
}

// Number of hierarchy levels each entity type spans.
var hierarchyDepth = map[string]int{
	atlas.TypeDatabase: 1,
	atlas.TypeSchema:   2,
	atlas.TypeTable:    3,
	atlas.TypeColumn:   4,
}

// HierarchicalMapper maps the database/schema/table/column segments of a
// qualified name positionally onto resource elements of the same name.
type HierarchicalMapper struct {
	baseMapper
}

var _ Mapper = (*HierarchicalMapper)(nil)

func NewHierarchicalMapper() *HierarchicalMapper {
	return &HierarchicalMapper{
		baseMapper: baseMapper{
			name:          HierarchicalMapperName,
			componentName: HierarchicalComponent,
			supportedTypes: []string{
				atlas.TypeDatabase, atlas.TypeSchema, atlas.TypeTable, atlas.TypeColumn,
			},
		},
	}
}

func (m *HierarchicalMapper) BuildResource(e *atlas.Entity) (*ranger.ServiceResource, error) {
	in, err := m.prepare(e)
	if err != nil {
		return nil, err
	}
	depth, ok := hierarchyDepth[e.TypeName]
	if !ok {
		return nil, in.fail(ErrUnsupportedEntityType, "no hierarchy defined")
	}
	serviceName, err := m.serviceName(in)
	if err != nil {
		return nil, err
	}

	segs := qname.Segments(in.qualifiedName)
	elements := make(map[string]*ranger.PolicyResource)
	for _, level := range hierarchy[:depth] {
		// Blank segments are omitted, not an error.
		v := qname.Segment(segs, level.segment)
		if strings.TrimSpace(v) == "" {
			continue
		}
		elements[level.resource] = ranger.NewPolicyResource(v)
	}
	if len(elements) == 0 {
		return nil, in.fail(ErrMalformedQualifiedName, "no %s resource found in qualified name", e.TypeName)
	}

	return ranger.NewServiceResource(e.GUID, serviceName, elements), nil
}
