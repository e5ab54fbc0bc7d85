// Package credentials maps a device's credential reference to connection
// secrets. The resolver is a plain key-to-secret map: the default set comes
// from the process environment (optionally seeded from a .env file), named
// overrides come from a YAML credentials file. Secrets-management
// integration lives outside this core.
package credentials

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// DefaultRef is the reference every device gets unless the inventory names
// a different one.
const DefaultRef = "default"

// Environment variables for the default credential set.
const (
	EnvUsername = "TRACEWALK_SSH_USER"
	EnvPassword = "TRACEWALK_SSH_PASS"
	EnvEnable   = "TRACEWALK_SSH_ENABLE"
)

// Credentials is one connection secret set.
type Credentials struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	EnableSecret string `yaml:"enable_secret"` // privilege escalation, optional
}

// Resolver resolves credential references for devices.
type Resolver struct {
	sets map[string]Credentials
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{sets: make(map[string]Credentials)}
}

// FromEnv builds a resolver whose default set comes from the process
// environment. A .env file in the working directory is honored when present
// (godotenv never overrides variables already set). If no username is found
// the default set stays unbound and Resolve("default") fails.
func FromEnv() *Resolver {
	_ = godotenv.Load()

	r := NewResolver()
	user := os.Getenv(EnvUsername)
	if user == "" {
		return r
	}
	r.sets[DefaultRef] = Credentials{
		Username:     user,
		Password:     os.Getenv(EnvPassword),
		EnableSecret: os.Getenv(EnvEnable),
	}
	return r
}

// credentialsFile is the on-disk shape of named credential sets.
type credentialsFile struct {
	Credentials map[string]Credentials `yaml:"credentials"`
}

// LoadFile merges named credential sets from a YAML file into the resolver.
// File entries override same-named sets already present.
func (r *Resolver) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return util.NewLoadError(path, err.Error())
	}
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return util.NewLoadError(path, err.Error())
	}
	for ref, creds := range file.Credentials {
		if creds.Username == "" {
			return util.NewLoadError(path, fmt.Sprintf("credential set '%s' has no username", ref))
		}
		r.sets[ref] = creds
	}
	return nil
}

// Put binds a credential set to a reference.
func (r *Resolver) Put(ref string, creds Credentials) {
	r.sets[ref] = creds
}

// SetDefault binds the default credential set.
func (r *Resolver) SetDefault(creds Credentials) {
	r.sets[DefaultRef] = creds
}

// HasDefault reports whether the default set is bound.
func (r *Resolver) HasDefault() bool {
	_, ok := r.sets[DefaultRef]
	return ok
}

// Resolve returns the credential set bound to a reference. An empty
// reference resolves the default set.
func (r *Resolver) Resolve(ref string) (Credentials, error) {
	if ref == "" {
		ref = DefaultRef
	}
	creds, ok := r.sets[ref]
	if !ok {
		return Credentials{}, fmt.Errorf("credential reference '%s': %w", ref, util.ErrCredentialsNotFound)
	}
	return creds, nil
}
