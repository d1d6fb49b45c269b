// Package ranger defines the resource descriptors handed to the policy engine.
package ranger

// Well-known resource element names of the tag service definition.
const (
	ResourceEntityType           = "entity-type"
	ResourceEntityClassification = "entity-classification"
	ResourceEntity               = "entity"
)

// Resource element names of the hierarchical (database) service definition.
const (
	ResourceDatabase = "database"
	ResourceSchema   = "schema"
	ResourceTable    = "table"
	ResourceColumn   = "column"
)

// Wildcard matches any value of a resource element.
const Wildcard = "*"

// PolicyResource is the value set of a single resource type.
type PolicyResource struct {
	Values      []string `yaml:"values" json:"values"`
	IsExcludes  bool     `yaml:"isExcludes" json:"isExcludes"`
	IsRecursive bool     `yaml:"isRecursive" json:"isRecursive"`
}

// NewPolicyResource returns a non-excluding, non-recursive resource
// matching the given values.
func NewPolicyResource(values ...string) *PolicyResource {
	vs := make([]string, len(values))
	copy(vs, values)
	return &PolicyResource{Values: vs}
}

// ServiceResource is a single addressable resource of a policy engine service.
type ServiceResource struct {
	// The GUID of the catalog entity this resource was built from.
	ID          string `yaml:"id" json:"id"`
	ServiceName string `yaml:"serviceName" json:"serviceName"`
	// Resource elements keyed by resource type name. Never empty.
	ResourceElements map[string]*PolicyResource `yaml:"resourceElements" json:"resourceElements"`
}

func NewServiceResource(id, serviceName string, elements map[string]*PolicyResource) *ServiceResource {
	return &ServiceResource{
		ID:               id,
		ServiceName:      serviceName,
		ResourceElements: elements,
	}
}
