package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/yaml"

	"github.com/roach88/pgsearch/internal/catalog"
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/scope"
)

// Load error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeUnsupported = "E003" // Unsupported file extension
	ErrCodeLoadFailed  = "E004" // CUE load or YAML extraction failed
	ErrCodeBuildFailed = "E005" // CUE build failed
	ErrCodeShape       = "E006" // Value has the wrong shape or type
	ErrCodeCatalog     = "E007" // Models and relations are inconsistent
)

// LoadError is a configuration that could not be read into a Config.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Config is a loaded configuration.
type Config struct {
	Layer   scope.Capabilities
	Catalog *catalog.Static
	Scopes  []ir.Scope // declaration order
}

// Scope returns the named scope.
func (c *Config) Scope(name string) (ir.Scope, bool) {
	for _, s := range c.Scopes {
		if s.Name == name {
			return s, true
		}
	}
	return ir.Scope{}, false
}

// ScopeNames returns the scope names in declaration order.
func (c *Config) ScopeNames() []string {
	names := make([]string, len(c.Scopes))
	for i, s := range c.Scopes {
		names[i] = s.Name
	}
	return names
}

// NewCompiler returns a scope compiler over the configured catalog and layer.
func (c *Config) NewCompiler(logger *slog.Logger) *scope.Compiler {
	return scope.NewCompiler(c.Catalog, c.Layer, logger)
}

// Load reads a configuration from a .cue file, a .yaml/.yml file, or a
// directory of .cue files forming one package.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	var v cue.Value
	switch {
	case info.IsDir():
		v, err = loadCUE(path, ".")
	case filepath.Ext(path) == ".cue":
		v, err = loadCUE(filepath.Dir(path), "./"+filepath.Base(path))
	case filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml":
		v, err = loadYAML(path)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported config file %s (want .cue, .yaml or .yml)", path)}
	}
	if err != nil {
		return nil, err
	}
	return Parse(v)
}

// loadCUE builds one CUE instance.
func loadCUE(dir, arg string) (cue.Value, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Validate(); err != nil {
		return cue.Value{}, positioned(ErrCodeBuildFailed, "", err)
	}
	return value, nil
}

// loadYAML extracts a YAML file into CUE so it is read by the same parser.
func loadYAML(path string) (cue.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}

	file, err := yaml.Extract(path, src)
	if err != nil {
		return cue.Value{}, positioned(ErrCodeLoadFailed, "", err)
	}

	value := cuecontext.New().BuildFile(file)
	if err := value.Validate(); err != nil {
		return cue.Value{}, positioned(ErrCodeBuildFailed, "", err)
	}
	return value, nil
}

// LoadString compiles CUE source held in memory. Used by tests and tools
// that embed configuration.
func LoadString(src string) (*Config, error) {
	value := cuecontext.New().CompileString(src, cue.Filename("config.cue"))
	if err := value.Validate(); err != nil {
		return nil, positioned(ErrCodeBuildFailed, "", err)
	}
	return Parse(value)
}
