package index

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Descriptor is one parsed <app_id>.yaml file. Apps and servers keep the
// order they are written in.
type Descriptor struct {
	AppID int
	Apps  []AppDef
}

// AppDef describes one app name under an app id.
type AppDef struct {
	Name      string
	FullName  string
	Servers   []ServerDef
	Platforms map[string]PlatformDef

	Beta         *string
	BetaPassword *string
	AppConfig    *string
}

// ServerDef is one runnable configuration of an app.
type ServerDef struct {
	Name  string   `yaml:"-"`
	Start []string `yaml:"start"`
	Stop  []string `yaml:"stop"`
}

// Platform holds the executable settings for one platform, or one
// platform and architecture.
type Platform struct {
	Exec      string  `yaml:"exec"`
	Directory *string `yaml:"directory"`
	Library   *string `yaml:"library"`
}

// PlatformDef is either a single Platform or a set of Platforms keyed by
// architecture ("64bit", "32bit").
type PlatformDef struct {
	Default *Platform
	ByArch  map[string]Platform
}

// LoadDescriptor reads and parses a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses descriptor YAML.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	if d.AppID == 0 {
		return nil, fmt.Errorf("invalid descriptor: app_id is required")
	}
	if len(d.Apps) == 0 {
		return nil, fmt.Errorf("invalid descriptor %d: no apps defined", d.AppID)
	}
	return &d, nil
}

func (d *Descriptor) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		AppID int       `yaml:"app_id"`
		Apps  yaml.Node `yaml:"apps"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	d.AppID = raw.AppID

	return eachPair(&raw.Apps, "apps", func(name string, node *yaml.Node) error {
		var def AppDef
		if err := node.Decode(&def); err != nil {
			return fmt.Errorf("app %s: %w", name, err)
		}
		def.Name = name
		d.Apps = append(d.Apps, def)
		return nil
	})
}

func (a *AppDef) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		FullName     string               `yaml:"fname"`
		Servers      yaml.Node            `yaml:"servers"`
		Platforms    map[string]yaml.Node `yaml:"platforms"`
		Beta         *string              `yaml:"beta"`
		BetaPassword *string              `yaml:"password"`
		AppConfig    *string              `yaml:"app_config"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	a.FullName = raw.FullName
	a.Beta = raw.Beta
	a.BetaPassword = raw.BetaPassword
	a.AppConfig = raw.AppConfig

	err := eachPair(&raw.Servers, "servers", func(name string, node *yaml.Node) error {
		var s ServerDef
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("server %s: %w", name, err)
		}
		s.Name = name
		a.Servers = append(a.Servers, s)
		return nil
	})
	if err != nil {
		return err
	}

	a.Platforms = make(map[string]PlatformDef, len(raw.Platforms))
	for name, node := range raw.Platforms {
		var def PlatformDef
		if hasKey(&node, "exec") {
			var p Platform
			if err := node.Decode(&p); err != nil {
				return fmt.Errorf("platform %s: %w", name, err)
			}
			def.Default = &p
		} else if err := node.Decode(&def.ByArch); err != nil {
			return fmt.Errorf("platform %s: %w", name, err)
		}
		a.Platforms[name] = def
	}
	return nil
}

// App returns the app definition with the given name.
func (d *Descriptor) App(name string) (*AppDef, bool) {
	for i := range d.Apps {
		if d.Apps[i].Name == name {
			return &d.Apps[i], true
		}
	}
	return nil, false
}

// AppNames returns the app names in file order.
func (d *Descriptor) AppNames() []string {
	names := make([]string, 0, len(d.Apps))
	for _, a := range d.Apps {
		names = append(names, a.Name)
	}
	return names
}

// Server returns the server definition with the given name.
func (a *AppDef) Server(name string) (*ServerDef, bool) {
	for i := range a.Servers {
		if a.Servers[i].Name == name {
			return &a.Servers[i], true
		}
	}
	return nil, false
}

// ServerNames returns the server names in file order.
func (a *AppDef) ServerNames() []string {
	names := make([]string, 0, len(a.Servers))
	for _, s := range a.Servers {
		names = append(names, s.Name)
	}
	return names
}

// Platform picks the executable settings for a platform and architecture.
func (a *AppDef) Platform(platform, arch string) (Platform, bool) {
	def, ok := a.Platforms[platform]
	if !ok {
		return Platform{}, false
	}
	if def.Default != nil {
		return *def.Default, true
	}
	p, ok := def.ByArch[arch]
	return p, ok
}

// eachPair walks a mapping node in document order. A missing node is
// treated as empty.
func eachPair(node *yaml.Node, field string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s must be a mapping (line %d)", field, node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
