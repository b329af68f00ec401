// Package hosts implements the saved-hosts registry: a name -> {host,
// port, password} mapping persisted as an INI file beside the executable,
// read and written once per CLI invocation.
package hosts

import (
	"os"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/radj307/ARRCON/internal/apperr"
)

// Target is a connection endpoint: host, port, and password to
// authenticate with.
type Target struct {
	Host     string
	Port     string
	Password string
}

// Redacted returns a copy of t with Password cleared, for anything that
// might print a Target (list() never exposes the password).
func (t Target) Redacted() Target {
	t.Password = ""
	return t
}

// AddResult describes the outcome of Registry.Add.
type AddResult int

const (
	// Added means name was not previously present and now is.
	Added AddResult = iota
	// AlreadyExistsIdentical means name was already present with exactly
	// this Target; nothing changed.
	AlreadyExistsIdentical
	// AlreadyExistsConflict means name was already present with a
	// different Target; the registry was not modified.
	AlreadyExistsConflict
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "Added"
	case AlreadyExistsIdentical:
		return "AlreadyExistsIdentical"
	case AlreadyExistsConflict:
		return "AlreadyExistsConflict"
	default:
		return "Unknown"
	}
}

// Registry is the saved-hosts INI file, loaded fresh and saved back on
// every mutation. It caches nothing across calls by design: each CLI
// invocation is expected to load, make at most one change, and save.
type Registry struct {
	mu   sync.Mutex
	path string
	file *ini.File
}

// section/key names match the canonical ARRCON hosts-file schema, so a
// hosts file written by one implementation is readable by another.
const (
	keyHost = "sHost"
	keyPort = "sPort"
	keyPass = "sPass"
)

// Open loads the registry from path, creating an empty one in memory if
// the file doesn't exist yet (it is only written to disk on the first
// successful Add).
func Open(path string) (*Registry, error) {
	f, err := ini.LooseLoad(path)
	if err != nil {
		return nil, apperr.New(apperr.FileError, "hosts.Open", err)
	}
	return &Registry{path: path, file: f}, nil
}

// Resolve looks up name. found is false if no such section exists.
func (r *Registry) Resolve(name string) (target Target, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.file.HasSection(name) {
		return Target{}, false
	}
	sec := r.file.Section(name)
	return Target{
		Host:     sec.Key(keyHost).String(),
		Port:     sec.Key(keyPort).String(),
		Password: sec.Key(keyPass).String(),
	}, true
}

// Add inserts name -> target, or reports that an identical or conflicting
// entry already exists. On Added it writes the registry back to disk;
// AlreadyExistsIdentical and AlreadyExistsConflict leave the file
// untouched.
func (r *Registry) Add(name string, target Target) (AddResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file.HasSection(name) {
		existing := r.file.Section(name)
		if existing.Key(keyHost).String() == target.Host &&
			existing.Key(keyPort).String() == target.Port &&
			existing.Key(keyPass).String() == target.Password {
			return AlreadyExistsIdentical, nil
		}
		return AlreadyExistsConflict, nil
	}

	sec, err := r.file.NewSection(name)
	if err != nil {
		return Added, apperr.New(apperr.FileError, "hosts.Add", err)
	}
	sec.Key(keyHost).SetValue(target.Host)
	sec.Key(keyPort).SetValue(target.Port)
	sec.Key(keyPass).SetValue(target.Password)

	if err := r.save(); err != nil {
		return Added, err
	}
	return Added, nil
}

// Remove deletes name from the registry, saving the change. It reports
// whether an entry was actually present to remove.
func (r *Registry) Remove(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.file.HasSection(name) {
		return false, nil
	}
	r.file.DeleteSection(name)
	if err := r.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Entry is one row of List's output: a name paired with its Target, with
// the password redacted.
type Entry struct {
	Name   string
	Target Target
}

// List returns every saved host, names in file order, passwords redacted.
func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []Entry
	for _, sec := range r.file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		entries = append(entries, Entry{
			Name: sec.Name(),
			Target: Target{
				Host: sec.Key(keyHost).String(),
				Port: sec.Key(keyPort).String(),
			}.Redacted(),
		})
	}
	return entries
}

func (r *Registry) save() error {
	if err := r.file.SaveTo(r.path); err != nil {
		return apperr.New(apperr.FileError, "hosts.save", err)
	}
	return nil
}

// Exists reports whether path names a file on disk already.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
