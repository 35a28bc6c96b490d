// Package config provides configuration loading and management for archcheck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/archcheck/model"
)

// ErrNoFeatureRoots is returned when a configuration declares no feature roots.
var ErrNoFeatureRoots = errors.New("at least one feature root is required")

// Config represents the complete archcheck configuration
type Config struct {
	// ProjectRoot is the directory every configured path is relative to
	// (auto-detected from the project config file or git if empty)
	ProjectRoot string `yaml:"project_root"`

	// Workers is the analysis pool size (0 = one per CPU)
	Workers int `yaml:"workers"`

	// LogicExtensions are the only extensions allowed under a feature root
	LogicExtensions []string `yaml:"logic_extensions"`

	// PresentationExtensions are view-template extensions, required under component roots
	PresentationExtensions []string `yaml:"presentation_extensions"`

	// ServerPrefixes are entry-point prefixes that must carry the "use server" directive
	ServerPrefixes []string `yaml:"server_prefixes"`

	// ClientPrefixes are entry-point prefixes that must not carry it
	ClientPrefixes []string `yaml:"client_prefixes"`

	FeatureRoots   []FeatureRootConfig   `yaml:"feature_roots"`
	ComponentRoots []ComponentRootConfig `yaml:"component_roots"`

	// Severities maps a rule family to error, warning or off
	Severities map[string]string `yaml:"severities"`

	// Overrides are scoped rule entries; the most specific glob wins per family
	Overrides []OverrideConfig `yaml:"overrides"`

	// Exclude lists doublestar globs never analyzed
	Exclude []string `yaml:"exclude"`

	Publish PublishConfig `yaml:"publish"`
}

// FeatureRootConfig declares a directory holding feature modules
type FeatureRootConfig struct {
	// Path is relative to the project root (e.g. "src/features")
	Path string `yaml:"path"`

	// Optional roots are skipped when missing instead of aborting the run
	Optional bool `yaml:"optional"`

	ResourceRoot ResourceRootConfig `yaml:"resource_root"`

	// ResourceAlias is how source files spell the resource root in imports (e.g. "@/lib")
	ResourceAlias string `yaml:"resource_alias"`

	// FeatureAlias is how source files spell the feature root in imports (e.g. "@/features")
	FeatureAlias string `yaml:"feature_alias"`

	// ResourceExclude lists entry names skipped while scanning the resource root
	ResourceExclude []string `yaml:"resource_exclude"`

	// ResourceExtensions limits which resource files produce bindings
	ResourceExtensions []string `yaml:"resource_extensions"`

	// Families lists the enabled import-boundary families (empty = all four)
	Families []string `yaml:"families"`
}

// ResourceRootConfig derives the resource root from the feature root path
type ResourceRootConfig struct {
	// ReplaceSuffix is the trailing segment of the feature root to substitute
	ReplaceSuffix string `yaml:"replace_suffix"`
	// With is the segment it is replaced with
	With string `yaml:"with"`
	// Dir overrides the derivation with an explicit path
	Dir string `yaml:"dir"`
}

// ComponentRootConfig declares a directory of presentation components
type ComponentRootConfig struct {
	Path    string   `yaml:"path"`
	Exclude []string `yaml:"exclude"`
}

// OverrideConfig is a scoped rule entry
type OverrideConfig struct {
	Files    []string `yaml:"files"`
	Family   string   `yaml:"family"`
	Severity string   `yaml:"severity"`
}

// PublishConfig configures report publishing over NATS
type PublishConfig struct {
	// NATSURL is the server to publish to (empty = publishing disabled)
	NATSURL string `yaml:"nats_url"`
	// Subject defaults to "archcheck.report.<project>"
	Subject string `yaml:"subject"`
}

// DefaultFeatureRoot returns a feature root with the conventional resource layout
func DefaultFeatureRoot(rootPath string, optional bool) FeatureRootConfig {
	return FeatureRootConfig{
		Path:     rootPath,
		Optional: optional,
		ResourceRoot: ResourceRootConfig{
			ReplaceSuffix: "features",
			With:          "lib",
		},
		ResourceAlias:      "@/lib",
		FeatureAlias:       "@/features",
		ResourceExclude:    []string{"proxy.ts", "types"},
		ResourceExtensions: []string{".ts"},
	}
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ProjectRoot:            "", // Auto-detect
		Workers:                0,
		LogicExtensions:        []string{".ts"},
		PresentationExtensions: []string{".tsx"},
		ServerPrefixes:         []string{"server", "admin"},
		ClientPrefixes:         []string{"client"},
		FeatureRoots: []FeatureRootConfig{
			DefaultFeatureRoot("src/features", false),
			DefaultFeatureRoot("scripts/features", true),
			DefaultFeatureRoot("supabase/functions/features", true),
		},
		ComponentRoots: []ComponentRootConfig{
			{Path: "src/components", Exclude: []string{"src/components/shared/ui/**"}},
		},
		Severities: map[string]string{
			string(model.FamilyJSDoc): string(model.SeverityWarning),
		},
		Exclude: []string{"**/node_modules/**", "**/*.d.ts", "**/.next/**", "**/dist/**"},
	}
}

// UnmarshalYAML fills the fields a root entry leaves out from DefaultFeatureRoot.
func (f *FeatureRootConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain FeatureRootConfig
	root := plain(DefaultFeatureRoot("", false))
	if err := value.Decode(&root); err != nil {
		return err
	}
	*f = FeatureRootConfig(root)
	return nil
}

// ResourceDir returns the resource root for the feature root, relative to the
// project root. It is empty when neither an explicit dir nor a matching
// suffix substitution applies.
func (f FeatureRootConfig) ResourceDir() string {
	if f.ResourceRoot.Dir != "" {
		return path.Clean(filepath.ToSlash(f.ResourceRoot.Dir))
	}
	clean := path.Clean(filepath.ToSlash(f.Path))
	suffix := f.ResourceRoot.ReplaceSuffix
	if suffix == "" || path.Base(clean) != suffix {
		return ""
	}
	return path.Join(path.Dir(clean), f.ResourceRoot.With)
}

// EnabledFamilies returns the import-boundary families the root enforces
func (f FeatureRootConfig) EnabledFamilies() []model.Family {
	if len(f.Families) == 0 {
		return model.ImportBoundaryFamilies()
	}
	families := make([]model.Family, 0, len(f.Families))
	for _, name := range f.Families {
		families = append(families, model.Family(name))
	}
	return families
}

// Severity returns the configured severity for a family, defaulting to error
func (c *Config) Severity(family model.Family) model.Severity {
	if s, ok := c.Severities[string(family)]; ok {
		if sev, err := model.ParseSeverity(s); err == nil {
			return sev
		}
	}
	return model.SeverityError
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.FeatureRoots) == 0 {
		return ErrNoFeatureRoots
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if err := validateExtensions("logic_extensions", c.LogicExtensions); err != nil {
		return err
	}
	if err := validateExtensions("presentation_extensions", c.PresentationExtensions); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, root := range c.FeatureRoots {
		if root.Path == "" {
			return fmt.Errorf("feature_roots[%d].path is required", i)
		}
		if seen[root.Path] {
			return fmt.Errorf("feature_roots[%d]: duplicate root %q", i, root.Path)
		}
		seen[root.Path] = true
		for _, fam := range root.Families {
			f := model.Family(fam)
			if !isImportBoundary(f) {
				return fmt.Errorf("feature_roots[%d]: %q is not an import-boundary family", i, fam)
			}
		}
		if err := validateExtensions(fmt.Sprintf("feature_roots[%d].resource_extensions", i), root.ResourceExtensions); err != nil {
			return err
		}
	}

	for i, comp := range c.ComponentRoots {
		if comp.Path == "" {
			return fmt.Errorf("component_roots[%d].path is required", i)
		}
		if err := validateGlobs(fmt.Sprintf("component_roots[%d].exclude", i), comp.Exclude); err != nil {
			return err
		}
	}

	for fam, sev := range c.Severities {
		if !model.Family(fam).IsValid() {
			return fmt.Errorf("severities: unknown family %q", fam)
		}
		if _, err := model.ParseSeverity(sev); err != nil {
			return fmt.Errorf("severities.%s: %w", fam, err)
		}
	}

	for i, o := range c.Overrides {
		if len(o.Files) == 0 {
			return fmt.Errorf("overrides[%d].files is required", i)
		}
		if !model.Family(o.Family).IsValid() {
			return fmt.Errorf("overrides[%d]: unknown family %q", i, o.Family)
		}
		if _, err := model.ParseSeverity(o.Severity); err != nil {
			return fmt.Errorf("overrides[%d]: %w", i, err)
		}
		if err := validateGlobs(fmt.Sprintf("overrides[%d].files", i), o.Files); err != nil {
			return err
		}
	}

	return validateGlobs("exclude", c.Exclude)
}

func isImportBoundary(f model.Family) bool {
	for _, known := range model.ImportBoundaryFamilies() {
		if f == known {
			return true
		}
	}
	return false
}

func validateExtensions(field string, exts []string) error {
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%s: extension %q must start with a dot", field, ext)
		}
	}
	return nil
}

func validateGlobs(field string, globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("%s: invalid glob %q", field, g)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.ProjectRoot != "" {
		c.ProjectRoot = other.ProjectRoot
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if len(other.LogicExtensions) > 0 {
		c.LogicExtensions = other.LogicExtensions
	}
	if len(other.PresentationExtensions) > 0 {
		c.PresentationExtensions = other.PresentationExtensions
	}
	if len(other.ServerPrefixes) > 0 {
		c.ServerPrefixes = other.ServerPrefixes
	}
	if len(other.ClientPrefixes) > 0 {
		c.ClientPrefixes = other.ClientPrefixes
	}
	if len(other.FeatureRoots) > 0 {
		c.FeatureRoots = other.FeatureRoots
	}
	if len(other.ComponentRoots) > 0 {
		c.ComponentRoots = other.ComponentRoots
	}
	if len(other.Exclude) > 0 {
		c.Exclude = other.Exclude
	}

	// Severities merge per family, overrides accumulate
	if len(other.Severities) > 0 && c.Severities == nil {
		c.Severities = make(map[string]string)
	}
	for fam, sev := range other.Severities {
		c.Severities[fam] = sev
	}
	c.Overrides = append(c.Overrides, other.Overrides...)

	if other.Publish.NATSURL != "" {
		c.Publish.NATSURL = other.Publish.NATSURL
	}
	if other.Publish.Subject != "" {
		c.Publish.Subject = other.Publish.Subject
	}
}
