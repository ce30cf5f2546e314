package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files looked up by Find, in order.
var FileNames = []string{".xtn.hcl", ".xtn.yaml", ".xtn.yml"}

// Config drives the command line tools.
type Config struct {
	// Include and Exclude are doublestar globs relative to the searched root.
	Include []string `hcl:"include,optional" yaml:"include,omitempty"`
	Exclude []string `hcl:"exclude,optional" yaml:"exclude,omitempty"`
	// LineEnding is lf, crlf or cr. Empty defers to .editorconfig.
	LineEnding string `hcl:"line_ending,optional" yaml:"line_ending,omitempty"`
	// Jobs bounds the number of files processed at once. Zero means one per CPU.
	Jobs int `hcl:"jobs,optional" yaml:"jobs,omitempty"`
}

func Default() *Config {
	return &Config{Include: []string{"**/*.xtn"}}
}

var lineEndings = map[string]string{
	editorconfig.EndOfLineLf:   "\n",
	editorconfig.EndOfLineCrLf: "\r\n",
	editorconfig.EndOfLineCr:   "\r",
}

// Load reads a config file. Files ending in .yaml or .yml are YAML, anything
// else is HCL. Unset fields keep their defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	} else {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}
		if diags := gohcl.DecodeBody(file.Body, evalContext(), cfg); diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// evalContext exposes the process environment to HCL expressions as `env`.
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func (c *Config) Validate() error {
	if c.LineEnding != "" {
		if _, ok := lineEndings[strings.ToLower(c.LineEnding)]; !ok {
			return errors.Errorf("line_ending must be lf, crlf or cr, got %q", c.LineEnding)
		}
	}
	if c.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if len(c.Include) == 0 {
		return errors.Errorf("include must not be empty")
	}
	return nil
}

// Find looks for a config file in dir and its parents and loads the first
// one found. Without one it returns Default.
func Find(fs afero.Fs, dir string) (*Config, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.Errorf("resolving %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if ok, err := afero.Exists(fs, path); err != nil {
				return nil, "", errors.Errorf("checking %s: %w", path, err)
			} else if ok {
				cfg, err := Load(fs, path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}
		dir = parent
	}
}

// LineEndingFor returns the line terminator to write path with: the
// configured one, else the end_of_line of the closest .editorconfig section
// matching path, else "\n".
func (c *Config) LineEndingFor(fs afero.Fs, path string) (string, error) {
	if c.LineEnding != "" {
		return lineEndings[strings.ToLower(c.LineEnding)], nil
	}
	eol, err := editorconfigEndOfLine(fs, path)
	if err != nil {
		return "", err
	}
	if le, ok := lineEndings[eol]; ok {
		return le, nil
	}
	return "\n", nil
}

func editorconfigEndOfLine(fs afero.Fs, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	dir := abs
	for dir != filepath.Dir(dir) {
		dir = filepath.Dir(dir)
		name := filepath.Join(dir, ".editorconfig")
		data, err := afero.ReadFile(fs, name)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return "", errors.Errorf("reading %s: %w", name, err)
		}

		ec, err := editorconfig.Parse(bytes.NewReader(data))
		if err != nil {
			return "", errors.Errorf("parsing %s: %w", name, err)
		}
		// sections are matched against the path relative to the file, with a leading slash
		def, err := ec.GetDefinitionForFilename(filepath.ToSlash(abs[len(strings.TrimSuffix(dir, string(filepath.Separator))):]))
		if err != nil {
			return "", errors.Errorf("matching %s: %w", name, err)
		}
		if def.EndOfLine != "" {
			return def.EndOfLine, nil
		}
		if ec.Root {
			break
		}
	}
	return "", nil
}
