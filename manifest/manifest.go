// Package manifest handles rsc.toml project configuration.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/chazu/rsc/vm"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "rsc.toml"

// Manifest represents an rsc.toml project configuration.
type Manifest struct {
	Project Project              `toml:"project"`
	Run     RunConfig            `toml:"run"`
	Cache   CacheConfig          `toml:"cache"`
	Log     LogConfig            `toml:"log"`
	Server  ServerConfig         `toml:"server"`
	Env     map[string]RunConfig `toml:"env,omitempty"`

	// Dir is the directory containing the rsc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Scripts string `toml:"scripts"`
	Entry   string `toml:"entry"`
}

// RunConfig holds execution limits. Zero means the VM default.
type RunConfig struct {
	MaxFrameDepth   int   `toml:"max-frame-depth"`
	MaxInstructions int64 `toml:"max-instructions"`
	Workers         int   `toml:"workers"`
}

// CacheConfig configures the compiled-program cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ServerConfig configures `rsc serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no rsc.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Project.Scripts == "" {
		m.Project.Scripts = "scripts"
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".rsc", "cache.db")
	}
	if m.Server.Addr == "" {
		m.Server.Addr = "localhost:8765"
	}
	if m.Run.Workers <= 0 {
		m.Run.Workers = 4
	}
}

// Encode writes m as TOML.
func (m *Manifest) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(m)
}

// Init writes a default rsc.toml for a project called name into dir and
// creates its scripts directory. An existing rsc.toml is never overwritten.
func Init(dir, name string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	m := Default(dir)
	m.Project.Name = name
	var buf bytes.Buffer
	buf.WriteString("# rsc project configuration\n\n")
	if err := m.Encode(&buf); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, m.Project.Scripts), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load parses an rsc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) validate() error {
	check := func(section string, r RunConfig) error {
		if r.MaxFrameDepth < 0 {
			return fmt.Errorf("[%s] max-frame-depth must not be negative", section)
		}
		if r.Workers < 0 {
			return fmt.Errorf("[%s] workers must not be negative", section)
		}
		return nil
	}
	if err := check("run", m.Run); err != nil {
		return err
	}
	for name, r := range m.Env {
		if err := check("env."+name, r); err != nil {
			return err
		}
	}
	return nil
}

// FindAndLoad walks up from startDir to find an rsc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// ApplyEnv applies environment overrides: RSC_SCRIPTS_DIR replaces the
// scripts directory, RSC_ENV merges the matching [env.<name>] run limits and
// RSC_CACHE toggles the cache.
func (m *Manifest) ApplyEnv(getenv func(string) string) error {
	if dir := getenv("RSC_SCRIPTS_DIR"); dir != "" {
		m.Project.Scripts = dir
	}
	if name := getenv("RSC_ENV"); name != "" {
		r, ok := m.Env[name]
		if !ok {
			return fmt.Errorf("RSC_ENV=%s: no [env.%s] section", name, name)
		}
		if r.MaxFrameDepth != 0 {
			m.Run.MaxFrameDepth = r.MaxFrameDepth
		}
		if r.MaxInstructions != 0 {
			m.Run.MaxInstructions = r.MaxInstructions
		}
		if r.Workers != 0 {
			m.Run.Workers = r.Workers
		}
	}
	if v := getenv("RSC_CACHE"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RSC_CACHE=%s: %w", v, err)
		}
		m.Cache.Enabled = on
	}
	return nil
}

// ScriptsPath returns the absolute path of the scripts directory.
func (m *Manifest) ScriptsPath() string {
	return m.resolve(m.Project.Scripts)
}

// CachePath returns the absolute path of the cache database.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// VMOptions converts the run limits into interpreter options.
func (m *Manifest) VMOptions() []vm.Option {
	var opts []vm.Option
	if m.Run.MaxFrameDepth > 0 {
		opts = append(opts, vm.WithMaxFrameDepth(m.Run.MaxFrameDepth))
	}
	if m.Run.MaxInstructions != 0 {
		opts = append(opts, vm.WithMaxInstructions(m.Run.MaxInstructions))
	}
	return opts
}
