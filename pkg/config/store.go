package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/yami-cli/yami/pkg/consts"
	"github.com/yami-cli/yami/pkg/errcode"
	"gopkg.in/yaml.v3"
)

type (
	// Store provides persistent profile operations over a single YAML file.
	// Every mutation re-reads the file, applies the change, and writes the
	// whole store atomically (temp file + rename), so concurrent short-lived
	// invocations never observe a partial file.
	Store struct {
		path string
	}

	// Profile is a named Connection as reported by List, with the default
	// marker resolved.
	Profile struct {
		Name       string `json:"name"`
		Connection `yaml:",inline"`
		Default    bool `json:"default"`
	}
)

// NewStore creates a Store rooted at the given config directory.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, consts.ProfileFileName)}
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Add persists a new profile. It fails with ALREADY_EXISTS when the name is
// taken and overwrite is false. The first profile added to an empty store
// becomes the default.
func (s *Store) Add(name string, conn Connection, overwrite bool) error {
	if name == "" {
		return errcode.New(errcode.ValidationError, "profile name cannot be empty")
	}
	if conn.URI == "" {
		return errcode.Newf(errcode.ValidationError, "profile '%s' requires a uri", name)
	}

	f, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	if _, ok := f.Profiles[name]; ok && !overwrite {
		return errcode.Newf(errcode.AlreadyExists, "profile '%s' already exists", name)
	}

	f.Profiles[name] = conn
	if f.Default == "" {
		f.Default = name
	}

	return s.save(f)
}

// Use atomically repoints the default profile. It fails with NOT_FOUND when
// the name is absent.
func (s *Store) Use(name string) error {
	f, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	if _, ok := f.Profiles[name]; !ok {
		return errcode.Newf(errcode.NotFound, "profile '%s' not found", name)
	}

	f.Default = name
	return s.save(f)
}

// Remove deletes a profile. Removing the default clears the default
// pointer; the next Add or Use sets a new one.
func (s *Store) Remove(name string) error {
	f, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	if _, ok := f.Profiles[name]; !ok {
		return errcode.Newf(errcode.NotFound, "profile '%s' not found", name)
	}

	delete(f.Profiles, name)
	if f.Default == name {
		f.Default = ""
	}

	return s.save(f)
}

// Get returns the named profile's connection.
func (s *Store) Get(name string) (Connection, bool, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return Connection{}, false, err
	}

	conn, ok := f.Profiles[name]
	return conn, ok, nil
}

// Default returns the default profile's name and connection, if one is set.
func (s *Store) Default() (string, Connection, bool, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return "", Connection{}, false, err
	}

	if f.Default == "" {
		return "", Connection{}, false, nil
	}

	conn, ok := f.Profiles[f.Default]
	if !ok {
		// Dangling pointer, e.g. the file was edited by hand.
		return "", Connection{}, false, nil
	}

	return f.Default, conn, true, nil
}

// List returns all profiles sorted by name with the default marked.
func (s *Store) List() ([]Profile, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, Profile{
			Name:       name,
			Connection: f.Profiles[name],
			Default:    name == f.Default,
		})
	}

	return profiles, nil
}

// save writes the whole store atomically: encode to a temp file in the
// same directory, then rename over the target. The rename is the commit
// point; a crash before it leaves the previous store intact.
func (s *Store) save(f *File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, consts.ModeConfigDir); err != nil {
		return errors.Wrapf(err, "failed to create config directory: %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return errors.Wrap(err, "failed to create temp store file")
	}

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(f); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to encode profile store")
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to flush profile store")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp store file")
	}

	if err := os.Chmod(tmp.Name(), consts.ModeConfigFile); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to set store file mode")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace store file: %s", s.path)
	}

	return nil
}
