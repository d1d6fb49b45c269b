// Package atlas defines the catalog entities carried on the change-notification feed.
package atlas

import "strings"

// Well-known entity attribute names.
const (
	AttrQualifiedName = "qualifiedName"
)

// Well-known entity type names.
const (
	TypeDatabase = "Database"
	TypeSchema   = "Schema"
	TypeTable    = "Table"
	TypeColumn   = "Column"
)

// Classification is a tag attached to an entity.
type Classification struct {
	Name string `yaml:"typeName" json:"typeName"`
}

// Entity is a catalog entity together with its classifications,
// as received from a single notification.
type Entity struct {
	TypeName        string           `yaml:"typeName" json:"typeName"`
	GUID            string           `yaml:"guid" json:"guid"`
	Attributes      map[string]any   `yaml:"attributes" json:"attributes"`
	Classifications []Classification `yaml:"classifications" json:"classifications"`
}

// QualifiedName returns the entity's qualified name attribute.
// The second return value is false if the attribute is absent,
// not a string, or blank.
func (e *Entity) QualifiedName() (string, bool) {
	v, ok := e.Attributes[AttrQualifiedName]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// ClassificationNames returns the names of all classifications, in order.
// Duplicates are retained.
func (e *Entity) ClassificationNames() []string {
	names := make([]string, 0, len(e.Classifications))
	for _, c := range e.Classifications {
		names = append(names, c.Name)
	}
	return names
}
