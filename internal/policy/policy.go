// Package policy compiles the role based access rules of the document API.
package policy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

var allVerbs = []string{"get", "post", "put", "delete"}

type file struct {
	Resource string `yaml:"resource"`
	Rules    []struct {
		Roles []string `yaml:"roles"`
		Allow []struct {
			Route string   `yaml:"route"`
			Verbs []string `yaml:"verbs"`
		} `yaml:"allow"`
	} `yaml:"rules"`
}

type rule struct {
	role  Role
	route string
	verb  string
}

// Policy is an immutable (role, route, verb) allow table.
type Policy struct {
	resource string
	allowed  map[rule]struct{}
}

// Default returns the policy embedded in the binary.
func Default() (*Policy, error) {
	return Parse(defaultPolicy)
}

// Parse compiles a YAML policy document.
func Parse(b []byte) (*Policy, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if f.Resource == "" {
		return nil, fmt.Errorf("parse policy: resource is required")
	}

	p := &Policy{resource: strings.TrimSuffix(f.Resource, "/"), allowed: map[rule]struct{}{}}
	for _, r := range f.Rules {
		roles := make([]Role, 0, len(r.Roles))
		for _, name := range r.Roles {
			role, err := ParseRole(name)
			if err != nil {
				return nil, fmt.Errorf("parse policy: %w", err)
			}
			roles = append(roles, role)
		}
		for _, a := range r.Allow {
			verbs, err := expandVerbs(a.Verbs)
			if err != nil {
				return nil, fmt.Errorf("parse policy: route %s: %w", a.Route, err)
			}
			for _, role := range roles {
				for _, v := range verbs {
					p.allowed[rule{role: role, route: a.Route, verb: v}] = struct{}{}
				}
			}
		}
	}
	return p, nil
}

func expandVerbs(in []string) ([]string, error) {
	var out []string
	for _, v := range in {
		v = strings.ToLower(v)
		if v == "*" {
			return allVerbs, nil
		}
		known := false
		for _, k := range allVerbs {
			if k == v {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown verb %q", v)
		}
		out = append(out, v)
	}
	return out, nil
}

// Resource is the route prefix the rules are relative to.
func (p *Policy) Resource() string { return p.resource }

// Allowed reports whether any of roles may call method on routePath. routePath is the
// registered route pattern, e.g. /api/docs/:docId.
func (p *Policy) Allowed(roles []Role, routePath, method string) bool {
	route := strings.TrimPrefix(routePath, p.resource)
	if route == "" {
		route = "/"
	}
	verb := strings.ToLower(method)
	for _, r := range roles {
		if _, ok := p.allowed[rule{role: r, route: route, verb: verb}]; ok {
			return true
		}
	}
	return false
}
