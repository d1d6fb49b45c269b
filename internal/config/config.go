// Package config holds the properties that drive mapper selection,
// service-name overrides and the health probes.
//
// Properties are read from a YAML file. Nested mappings are flattened into
// dotted keys, so the following two files are equivalent:
//
//	ranger.tagsync.atlas.custom.resource.mappers: classification
//
//	ranger:
//	  tagsync:
//	    atlas:
//	      custom.resource.mappers: classification
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dnswlt/tagsync/internal/store"
	"gopkg.in/yaml.v3"
)

// Property keys.
const (
	PropCustomResourceMappers = "ranger.tagsync.atlas.custom.resource.mappers"
	PropEntityFilter          = "ranger.tagsync.atlas.entity.filter"

	// Service name overrides use the key pattern
	// <prefix><component><clusterIdentifier><cluster><suffix>.
	ServiceNamePropPrefix       = "ranger.tagsync.atlas."
	ServiceNameClusterIdent     = ".instance."
	ServiceNamePropSuffix       = ".ranger.service"
	DefaultServiceNameSeparator = "_"

	PropKafkaBootstrapServers = "atlas.kafka.bootstrap.servers"

	PropRangerEndpoint    = "ranger.tagsync.dest.ranger.endpoint"
	PropRangerUsername    = "ranger.tagsync.dest.ranger.username"
	PropRangerPassword    = "ranger.tagsync.dest.ranger.password"
	PropRangerSSLCAFile   = "ranger.tagsync.dest.ranger.ssl.ca.file"
	PropRangerSSLCertFile = "ranger.tagsync.dest.ranger.ssl.cert.file"
	PropRangerSSLKeyFile  = "ranger.tagsync.dest.ranger.ssl.key.file"
	PropRangerSSLInsecure = "ranger.tagsync.dest.ranger.ssl.insecure"

	PropHealthTimeout = "ranger.tagsync.health.timeout"
)

const DefaultHealthTimeout = 5 * time.Second

// Properties is a flat, read-only snapshot of configuration key/value pairs.
type Properties map[string]string

// Get returns the trimmed value of key, or "" if it is not set.
func (p Properties) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// Lookup is like Get, but also reports whether a non-blank value is set.
func (p Properties) Lookup(key string) (string, bool) {
	v := p.Get(key)
	return v, v != ""
}

// List splits the value of key at commas, trimming whitespace and
// dropping empty items.
func (p Properties) List(key string) []string {
	return SplitList(p.Get(key))
}

func (p Properties) Bool(key string) bool {
	b, err := strconv.ParseBool(p.Get(key))
	return err == nil && b
}

// Duration parses the value of key as a Go duration.
// It returns def if the key is not set or cannot be parsed.
func (p Properties) Duration(key string, def time.Duration) time.Duration {
	v, ok := p.Lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// CustomResourceMappers returns the raw comma-separated list of
// additional mapper identifiers.
func (p Properties) CustomResourceMappers() string {
	return p.Get(PropCustomResourceMappers)
}

// ServiceNameKey returns the property key of the service name override
// for the given component and cluster.
func ServiceNameKey(componentName, clusterName string) string {
	return ServiceNamePropPrefix + componentName + ServiceNameClusterIdent + clusterName + ServiceNamePropSuffix
}

// SplitList splits a comma-separated list, trimming whitespace and
// dropping empty items.
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Load reads properties from the YAML file at configPath in st.
func Load(st store.Store, configPath string) (Properties, error) {
	bs, err := st.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %v", configPath, err)
	}
	props, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration YAML in %q: %v", configPath, err)
	}
	return props, nil
}

// Parse reads properties from YAML data. An empty document yields
// empty Properties.
func Parse(data []byte) (Properties, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Properties{}, nil
		}
		return nil, err
	}
	props := Properties{}
	if len(doc.Content) == 0 {
		return props, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top-level node must be a mapping", root.Line)
	}
	if err := flatten("", root, props); err != nil {
		return nil, err
	}
	return props, nil
}

func flatten(prefix string, n *yaml.Node, props Properties) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			key := k.Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(key, v, props); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list items of %q must be scalars", c.Line, prefix)
			}
			items = append(items, c.Value)
		}
		props[prefix] = strings.Join(items, ",")
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			props[prefix] = ""
			return nil
		}
		props[prefix] = n.Value
	case yaml.AliasNode:
		return flatten(prefix, n.Alias, props)
	default:
		return fmt.Errorf("line %d: unsupported node for %q", n.Line, prefix)
	}
	return nil
}
