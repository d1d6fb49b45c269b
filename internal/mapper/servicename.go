package mapper

import (
	"strings"

	"github.com/dnswlt/tagsync/internal/config"
)

// ResolveServiceName returns the policy engine service name for entities of
// componentName in clusterName.
//
// An override can be configured per component and cluster, e.g.
//
//	ranger.tagsync.atlas.atlas.instance.cl1.ranger.service: cl1_tags
//
// Without an override, the name is clusterName + "_" + componentName.
func ResolveServiceName(clusterName, componentName string, props config.Properties) string {
	if name, ok := props.Lookup(config.ServiceNameKey(componentName, clusterName)); ok {
		return name
	}
	if strings.TrimSpace(clusterName) == "" {
		return ""
	}
	return clusterName + config.DefaultServiceNameSeparator + componentName
}
