package jobfile

import (
	"errors"
	"fmt"
	"os"

	"table-reconciler/core/database"
	"table-reconciler/core/reconcile"

	"gopkg.in/yaml.v3"
)

// File is a self-contained reconciliation job read from YAML. It carries its
// own connections so it can run without the metadata store.
type File struct {
	Source      Side         `yaml:"source"`
	Target      Side         `yaml:"target"`
	Comparison  *Comparison  `yaml:"comparison"`
	Consistency *Consistency `yaml:"consistency"`
	// StrictTypes overrides reconcile.strict_types when set.
	StrictTypes *bool `yaml:"strict_types"`
}

// Side is one table of a job.
type Side struct {
	Connection database.Config `yaml:"connection"`
	Table      string          `yaml:"table"`
}

// Comparison configures a table diff.
type Comparison struct {
	PrimaryKeys    []string          `yaml:"primary_keys"`
	KeyMappings    map[string]string `yaml:"key_mappings"`
	IgnoredColumns []string          `yaml:"ignored_columns"`
}

// Consistency configures a consistency check.
type Consistency struct {
	JoinMappings     Mappings              `yaml:"join_mappings"`
	ComparisonFields []reconcile.FieldPair `yaml:"comparison_fields"`
}

// Config returns the engine form of c.
func (c *Consistency) Config() reconcile.ConsistencyConfig {
	return reconcile.ConsistencyConfig{
		JoinMappings:     reconcile.FieldMappings(c.JoinMappings),
		ComparisonFields: c.ComparisonFields,
	}
}

// Mappings decodes either an ordered YAML mapping of source to target field
// names or a list of {source_field, target_field} pairs.
type Mappings reconcile.FieldMappings

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Mappings, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping entries must be scalar field names", k.Line)
			}
			out = append(out, reconcile.FieldPair{Source: k.Value, Target: v.Value})
		}
		*m = out
		return nil
	case yaml.SequenceNode:
		var pairs []reconcile.FieldPair
		if err := node.Decode(&pairs); err != nil {
			return err
		}
		*m = Mappings(pairs)
		return nil
	default:
		return fmt.Errorf("line %d: expected a mapping or a list of field pairs", node.Line)
	}
}

// Load reads and validates a job file. ${VAR} references are expanded from
// the environment before parsing.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("job file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a job definition.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	f.Source.Connection = withDefaults(f.Source.Connection)
	f.Target.Connection = withDefaults(f.Target.Connection)

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Source.Table == "" {
		return reconcile.NewConfigurationError("source.table", "is required")
	}
	if f.Target.Table == "" {
		return reconcile.NewConfigurationError("target.table", "is required")
	}
	if f.Comparison == nil && f.Consistency == nil {
		return reconcile.NewConfigurationError("comparison", "a comparison or consistency section is required")
	}
	if f.Consistency != nil {
		if err := f.Consistency.Config().Validate(); err != nil {
			return err
		}
	}
	return nil
}

func withDefaults(c database.Config) database.Config {
	if c.Driver == "" {
		c.Driver = database.DriverSQLite
	}
	if !c.IsSQLite() {
		if c.Host == "" {
			c.Host = "localhost"
		}
		if c.Port == 0 {
			c.Port = 3306
		}
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	return c
}
