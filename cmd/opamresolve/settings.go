package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tsukumogami/opamresolve/internal/config"
	"github.com/tsukumogami/opamresolve/internal/log"
	"github.com/tsukumogami/opamresolve/internal/opam"
	"github.com/tsukumogami/opamresolve/internal/override"
	"github.com/tsukumogami/opamresolve/internal/repository"
	"github.com/tsukumogami/opamresolve/internal/resolver"
	"github.com/tsukumogami/opamresolve/internal/userconfig"
)

var (
	repositoryFlag string
	overridesFlag  string
	scopeFlag      string
)

// settings are the effective values after applying, in order of
// precedence, flags, environment variables, config.toml and defaults.
type settings struct {
	Scope        string
	OCamlVersion string
	Repository   string
	Overrides    string
}

// firstSet returns the first non-empty value.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadSettings merges the layers. ocamlFlag is the per-command --ocaml value.
func loadSettings(ocamlFlag string) (settings, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return settings{}, err
	}
	user, err := userconfig.Load()
	if err != nil {
		return settings{}, err
	}
	return mergeSettings(cfg, user, ocamlFlag), nil
}

func mergeSettings(cfg *config.Config, user *userconfig.Config, ocamlFlag string) settings {
	// cfg's paths already honor the env vars, so they only act as the
	// default once config.toml has been consulted.
	return settings{
		Scope:        firstSet(scopeFlag, config.GetScope(), user.Scope, opam.DefaultScope),
		OCamlVersion: firstSet(ocamlFlag, config.GetOCamlVersion(), user.OCamlVersion),
		Repository:   firstSet(repositoryFlag, os.Getenv(config.EnvRepository), user.Repository, cfg.RepositoryDir),
		Overrides:    firstSet(overridesFlag, os.Getenv(config.EnvOverrides), user.Overrides, cfg.OverridesDir),
	}
}

// session holds the providers shared by one command invocation.
type session struct {
	settings  settings
	repos     repository.Provider
	overrides override.Provider
	resolver  *opam.Resolver
	table     *resolver.Table
}

func newSession(s settings) (*session, error) {
	if !strings.HasPrefix(s.Scope, "@") || !strings.HasSuffix(s.Scope, "/") {
		return nil, fmt.Errorf("invalid scope %q: must look like @name/", s.Scope)
	}

	logger := log.Default()
	repos := repository.Open(s.Repository, repository.WithLogger(logger))
	overrides := override.NewDir(s.Overrides, override.WithLogger(logger))
	r := opam.New(repos, overrides, opam.WithScope(s.Scope), opam.WithLogger(logger))

	table := resolver.NewTable()
	table.Register(r.Scope(), r)

	return &session{
		settings:  s,
		repos:     repos,
		overrides: overrides,
		resolver:  r,
		table:     table,
	}, nil
}

// normalizeIdentifier completes command-line shorthand: a bare name gets
// the scope, and an identifier without a range gets "@*".
func normalizeIdentifier(scope, arg string) string {
	if !strings.HasPrefix(arg, "@") {
		arg = scope + arg
	}
	if strings.HasPrefix(arg, scope) && !strings.Contains(strings.TrimPrefix(arg, scope), "@") {
		arg += "@*"
	}
	return arg
}
