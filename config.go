package huectl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the bridge URL and user are kept unless
// overridden.
const DefaultConfigPath = "./.huerc"

// Fields of the persisted document.
const (
	FieldBridgeURL = "bridge_url"
	FieldUser      = "user"
)

// Development defaults applied when the document is empty. The user is not
// a secret and grants nothing on any other bridge.
const (
	DefaultBridgeURL = "http://philips-hue.fritz.box"
	DefaultUser      = "9BPkuqCwCfuAHsoAXBf9fQVKZbhQ5uq3MyuOv8EF"
)

// ConfigAccessError reports a config file that could not be read or written.
type ConfigAccessError struct {
	Path string
	Err  error
}

func (e *ConfigAccessError) Error() string {
	return fmt.Sprintf("cannot access config file %s: %v", e.Path, e.Err)
}

func (e *ConfigAccessError) Unwrap() error {
	return e.Err
}

// Configuration is what huectl needs to address a bridge.
type Configuration struct {
	BridgeURL string `yaml:"bridge_url"`
	User      string `yaml:"user"`

	// Defaulted is set when the document was empty and the development
	// defaults were used.
	Defaulted bool `yaml:"-"`
}

func (c *Configuration) HasBridgeURL() bool {
	return c.BridgeURL != ""
}

func (c *Configuration) HasUser() bool {
	return c.User != ""
}

func (c *Configuration) set(field, value string) {
	switch field {
	case FieldBridgeURL:
		c.BridgeURL = value
	case FieldUser:
		c.User = value
	}
}

// ConfigStore reads and writes the configuration document. Every operation
// opens and closes the file itself; nothing is held between calls.
type ConfigStore struct {
	path string
}

// NewConfigStore returns a store for path, expanding a leading ~.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config path %s", path)
	}
	return &ConfigStore{path: expanded}, nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// Load reads the document. An empty document yields the development
// defaults; a file that cannot be read is a *ConfigAccessError.
func (s *ConfigStore) Load() (*Configuration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &ConfigAccessError{Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		log.WithField("path", s.path).Warn("Config file is empty, using development defaults.")
		return &Configuration{
			BridgeURL: DefaultBridgeURL,
			User:      DefaultUser,
			Defaulted: true,
		}, nil
	}

	cfg := &Configuration{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "could not parse config file %s", s.path)
	}
	return cfg, nil
}

// Save merges a single field into the document on disk, keeping every other
// key, and rewrites it. A missing file is created.
func (s *ConfigStore) Save(field, value string) error {
	document := map[string]interface{}{}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return &ConfigAccessError{Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &document); err != nil {
			return errors.Wrapf(err, "could not parse config file %s", s.path)
		}
		if document == nil {
			document = map[string]interface{}{}
		}
	}

	document[field] = value

	out, err := yaml.Marshal(document)
	if err != nil {
		return errors.Wrap(err, "could not encode config")
	}
	if err := writeFileAtomic(s.path, out); err != nil {
		return errors.Wrapf(err, "could not write config file %s", s.path)
	}

	log.WithFields(log.Fields{
		"path":  s.path,
		"field": field,
	}).Debug("Saved config field")
	return nil
}

// SaveTo records the field on cfg and persists it.
func (s *ConfigStore) SaveTo(cfg *Configuration, field, value string) error {
	if err := s.Save(field, value); err != nil {
		return err
	}
	cfg.set(field, value)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
