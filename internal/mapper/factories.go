package mapper

// Factory constructs a new, uninitialized Mapper.
type Factory func() Mapper

// BuiltinMappers are always loaded, before any custom mappers.
var BuiltinMappers = []string{HekaMapperName}

// DefaultFactories returns the table of all known mappers, keyed by identifier.
// New mappers are made available by adding them here.
func DefaultFactories() map[string]Factory {
	return map[string]Factory{
		HierarchicalMapperName:   func() Mapper { return NewHierarchicalMapper() },
		ClassificationMapperName: func() Mapper { return NewClassificationMapper() },
		HekaMapperName:           func() Mapper { return NewHekaMapper() },
	}
}
