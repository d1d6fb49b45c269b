package mapper

import (
	"errors"
	"testing"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/dnswlt/tagsync/internal/config"
	"github.com/dnswlt/tagsync/internal/ranger"
	"github.com/google/go-cmp/cmp"
)

func entity(typeName, qn string, classifications ...string) *atlas.Entity {
	e := &atlas.Entity{
		TypeName:   typeName,
		GUID:       "guid-" + typeName,
		Attributes: map[string]any{atlas.AttrQualifiedName: qn},
	}
	for _, c := range classifications {
		e.Classifications = append(e.Classifications, atlas.Classification{Name: c})
	}
	return e
}

func initialized[M Mapper](t *testing.T, m M, props config.Properties) M {
	t.Helper()
	if err := m.Initialize(props); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return m
}

func TestHierarchicalMapper(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		qn         string
		want       map[string]*ranger.PolicyResource
	}{
		{
			name:       "database",
			entityType: atlas.TypeDatabase,
			qn:         "default/snowflake/instanceA/db1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
			},
		},
		{
			name:       "schema",
			entityType: atlas.TypeSchema,
			qn:         "default/snowflake/instanceA/db1/schema1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
				"schema":   {Values: []string{"schema1"}},
			},
		},
		{
			name:       "table",
			entityType: atlas.TypeTable,
			qn:         "default/snowflake/instanceA/db1/schema1/tbl1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
				"schema":   {Values: []string{"schema1"}},
				"table":    {Values: []string{"tbl1"}},
			},
		},
		{
			name:       "column",
			entityType: atlas.TypeColumn,
			qn:         "default/snowflake/instanceA/db1/schema1/tbl1/col1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
				"schema":   {Values: []string{"schema1"}},
				"table":    {Values: []string{"tbl1"}},
				"column":   {Values: []string{"col1"}},
			},
		},
		{
			name:       "extra segments ignored",
			entityType: atlas.TypeDatabase,
			qn:         "default/snowflake/instanceA/db1/schema1/tbl1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
			},
		},
		{
			name:       "blank segment omitted",
			entityType: atlas.TypeTable,
			qn:         "default/snowflake/instanceA/db1//tbl1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
				"table":    {Values: []string{"tbl1"}},
			},
		},
		{
			name:       "missing trailing segment omitted",
			entityType: atlas.TypeTable,
			qn:         "default/snowflake/instanceA/db1/schema1",
			want: map[string]*ranger.PolicyResource{
				"database": {Values: []string{"db1"}},
				"schema":   {Values: []string{"schema1"}},
			},
		},
	}

	m := initialized(t, NewHierarchicalMapper(), config.Properties{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := m.BuildResource(entity(tc.entityType, tc.qn))
			if err != nil {
				t.Fatalf("BuildResource failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, res.ResourceElements); diff != "" {
				t.Errorf("ResourceElements mismatch (-want +got):\n%s", diff)
			}
			if res.ID != "guid-"+tc.entityType {
				t.Errorf("ID = %q, want %q", res.ID, "guid-"+tc.entityType)
			}
			if res.ServiceName != "default_atlan" {
				t.Errorf("ServiceName = %q, want %q", res.ServiceName, "default_atlan")
			}
		})
	}
}

func TestHierarchicalMapper_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entity  *atlas.Entity
		wantErr error
	}{
		{
			// No database, schema or table segment left to emit.
			name:    "table with only two segments",
			entity:  entity(atlas.TypeTable, "default/snowflake"),
			wantErr: ErrMalformedQualifiedName,
		},
		{
			name:    "unsupported type",
			entity:  entity("View", "default/snowflake/instanceA/db1/schema1/v1"),
			wantErr: ErrUnsupportedEntityType,
		},
		{
			name:    "missing qualified name",
			entity:  &atlas.Entity{TypeName: atlas.TypeTable, GUID: "g"},
			wantErr: ErrMissingAttribute,
		},
		{
			name:    "blank qualified name",
			entity:  entity(atlas.TypeTable, " "),
			wantErr: ErrMissingAttribute,
		},
		{
			name:    "no cluster name",
			entity:  entity(atlas.TypeTable, "/snowflake/instanceA/db1/schema1/tbl1"),
			wantErr: ErrMalformedQualifiedName,
		},
		{
			name:    "blank cluster name with override",
			entity:  entity(atlas.TypeTable, "  /snowflake/instanceA/db1/schema1/tbl1"),
			wantErr: ErrMalformedQualifiedName,
		},
	}

	m := initialized(t, NewHierarchicalMapper(), config.Properties{
		config.ServiceNameKey("atlan", "  "): "blank_cluster_service",
	})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := m.BuildResource(tc.entity)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("BuildResource() error = %v, want %v", err, tc.wantErr)
			}
			if res != nil {
				t.Errorf("BuildResource() = %+v, want nil", res)
			}
			var merr *MappingError
			if !errors.As(err, &merr) {
				t.Fatalf("error %v is not a *MappingError", err)
			}
			if merr.EntityType != tc.entity.TypeName {
				t.Errorf("MappingError.EntityType = %q, want %q", merr.EntityType, tc.entity.TypeName)
			}
		})
	}
}

func TestClassificationMapper(t *testing.T) {
	m := initialized(t, NewClassificationMapper(), config.Properties{})

	res, err := m.BuildResource(entity(atlas.TypeTable, "cl1/snowflake/conn/db/schema/tbl", "PII", "GDPR", "PII"))
	if err != nil {
		t.Fatalf("BuildResource failed: %v", err)
	}
	want := &ranger.ServiceResource{
		ID:          "guid-Table",
		ServiceName: "cl1_atlas",
		ResourceElements: map[string]*ranger.PolicyResource{
			"entity-type":           {Values: []string{"*"}},
			"entity-classification": {Values: []string{"PII", "GDPR", "PII"}},
			"entity":                {Values: []string{"*"}},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("BuildResource() mismatch (-want +got):\n%s", diff)
	}

	for _, typ := range []string{atlas.TypeDatabase, atlas.TypeSchema, atlas.TypeColumn} {
		if _, err := m.BuildResource(entity(typ, "cl1/snowflake/conn/db", "PII")); err != nil {
			t.Errorf("BuildResource(%s) failed: %v", typ, err)
		}
	}
}

func TestClassificationMapper_Errors(t *testing.T) {
	m := initialized(t, NewClassificationMapper(), config.Properties{})

	_, err := m.BuildResource(entity(atlas.TypeTable, "cl1/snowflake/conn/db/schema/tbl"))
	if !errors.Is(err, ErrNoClassifications) {
		t.Errorf("BuildResource() error = %v, want %v", err, ErrNoClassifications)
	}

	_, err = m.BuildResource(entity("Process", "cl1/snowflake/conn/p", "PII"))
	if !errors.Is(err, ErrUnsupportedEntityType) {
		t.Errorf("BuildResource() error = %v, want %v", err, ErrUnsupportedEntityType)
	}
}

func TestClassificationMapper_ServiceNameOverride(t *testing.T) {
	props := config.Properties{
		config.ServiceNameKey(ClassificationComponent, "cl1"): "cl1_tags",
	}
	m := initialized(t, NewClassificationMapper(), props)

	res, err := m.BuildResource(entity(atlas.TypeTable, "cl1/v/conn/db/schema/tbl", "PII"))
	if err != nil {
		t.Fatalf("BuildResource failed: %v", err)
	}
	if res.ServiceName != "cl1_tags" {
		t.Errorf("ServiceName = %q, want %q", res.ServiceName, "cl1_tags")
	}

	res, err = m.BuildResource(entity(atlas.TypeTable, "cl2/v/conn/db/schema/tbl", "PII"))
	if err != nil {
		t.Fatalf("BuildResource failed: %v", err)
	}
	if res.ServiceName != "cl2_atlas" {
		t.Errorf("ServiceName = %q, want %q", res.ServiceName, "cl2_atlas")
	}
}

func TestHekaMapper(t *testing.T) {
	props := config.Properties{
		// Overrides do not apply to the heka service.
		config.ServiceNameKey(HekaServiceName, "c1"): "other",
	}
	m := initialized(t, NewHekaMapper(), props)

	res, err := m.BuildResource(entity(atlas.TypeTable, "c1/v/conn/db/schema/tbl", "PII"))
	if err != nil {
		t.Fatalf("BuildResource failed: %v", err)
	}
	want := &ranger.ServiceResource{
		ID:          "guid-Table",
		ServiceName: "heka",
		ResourceElements: map[string]*ranger.PolicyResource{
			"entity-type": {Values: []string{"*"}},
			"entity":      {Values: []string{"c1/v/conn/db/schema/tbl", "c1/v/conn/db/schema/tbl/*"}},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("BuildResource() mismatch (-want +got):\n%s", diff)
	}

	res, err = m.BuildResource(entity(atlas.TypeSchema, "c2/v/conn/db/schema", "PII"))
	if err != nil {
		t.Fatalf("BuildResource failed: %v", err)
	}
	if res.ServiceName != HekaServiceName {
		t.Errorf("ServiceName = %q, want %q", res.ServiceName, HekaServiceName)
	}
}

func TestHekaMapper_Errors(t *testing.T) {
	m := initialized(t, NewHekaMapper(), nil)

	_, err := m.BuildResource(entity(atlas.TypeTable, "c1/v/conn/db/schema/tbl"))
	if !errors.Is(err, ErrNoClassifications) {
		t.Errorf("BuildResource() error = %v, want %v", err, ErrNoClassifications)
	}
	_, err = m.BuildResource(&atlas.Entity{TypeName: atlas.TypeTable, Attributes: map[string]any{}})
	if !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("BuildResource() error = %v, want %v", err, ErrMissingAttribute)
	}
	res, err := m.BuildResource(entity(atlas.TypeTable, "  /v/conn/db/schema/tbl", "PII"))
	if !errors.Is(err, ErrMalformedQualifiedName) {
		t.Errorf("BuildResource() error = %v, want %v", err, ErrMalformedQualifiedName)
	}
	if res != nil {
		t.Errorf("BuildResource() = %+v, want nil", res)
	}
}

func TestBuildResourceIsDeterministic(t *testing.T) {
	mappers := []Mapper{NewHierarchicalMapper(), NewClassificationMapper(), NewHekaMapper()}
	e := entity(atlas.TypeColumn, "c1/v/conn/db/schema/tbl/col", "PII", "PCI")
	for _, m := range mappers {
		initialized(t, m, config.Properties{})
		r1, err1 := m.BuildResource(e)
		r2, err2 := m.BuildResource(e)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: BuildResource failed: %v, %v", m.Name(), err1, err2)
		}
		if diff := cmp.Diff(r1, r2); diff != "" {
			t.Errorf("%s: results differ (-first +second):\n%s", m.Name(), diff)
		}
	}
}

func TestResolveServiceName(t *testing.T) {
	props := config.Properties{
		"ranger.tagsync.atlas.atlas.instance.cl1.ranger.service": "custom",
		"ranger.tagsync.atlas.atlas.instance.cl2.ranger.service": "  ",
	}
	tests := []struct {
		cluster, component string
		want               string
	}{
		{"cl1", "atlas", "custom"},
		{"cl2", "atlas", "cl2_atlas"},
		{"cl1", "atlan", "cl1_atlan"},
		{"", "atlas", ""},
	}
	for _, tc := range tests {
		if got := ResolveServiceName(tc.cluster, tc.component, props); got != tc.want {
			t.Errorf("ResolveServiceName(%q, %q) = %q, want %q", tc.cluster, tc.component, got, tc.want)
		}
	}
}

func TestMappingErrorMessage(t *testing.T) {
	err := &MappingError{
		Reason:        ErrNoClassifications,
		EntityType:    "Table",
		GUID:          "g-1",
		QualifiedName: "a/b",
		Message:       "details",
	}
	want := `no classifications: entity g-1 (type "Table", qualifiedName "a/b"): details`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
