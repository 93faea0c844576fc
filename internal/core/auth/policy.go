package auth

import (
	"net/http"
	"strconv"
)

type Requirement int

const (
	DenyAll Requirement = iota
	Authenticated
	Admin
	// SelfOrAdmin resolves the owning user from the ":id" path parameter.
	SelfOrAdmin
)

func (r Requirement) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	case SelfOrAdmin:
		return "self-or-admin"
	default:
		return "deny"
	}
}

// Rule matches a request by method and gin route pattern (e.g. "/api/users/:id").
type Rule struct {
	Methods []string
	Path    string
	Require Requirement
}

func (r Rule) matches(method, path string) bool {
	if r.Path != path {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Policy is evaluated in order; the first matching rule wins and
// unmatched routes are denied.
type Policy []Rule

func (p Policy) Lookup(method, path string) Requirement {
	for _, r := range p {
		if r.matches(method, path) {
			return r.Require
		}
	}
	return DenyAll
}

type Verdict int

const (
	Allow Verdict = iota
	Unauthenticated
	Forbidden
)

// Decide evaluates the route requirement for p. idParam is the raw ":id"
// path value, only consulted for SelfOrAdmin.
func (p Policy) Decide(principal *Principal, method, path, idParam string) Verdict {
	req := p.Lookup(method, path)
	switch req {
	case Authenticated:
		if principal == nil {
			return Unauthenticated
		}
		return Allow
	case Admin:
		if principal == nil {
			return Unauthenticated
		}
		if principal.IsAdmin() {
			return Allow
		}
		return Forbidden
	case SelfOrAdmin:
		if principal == nil {
			return Unauthenticated
		}
		var uid *int64
		if v, err := strconv.ParseInt(idParam, 10, 64); err == nil {
			uid = &v
		}
		if CanAccessUser(principal, uid) {
			return Allow
		}
		return Forbidden
	default:
		if principal == nil {
			return Unauthenticated
		}
		return Forbidden
	}
}

// LibraryPolicy is the route table of the /api surface.
func LibraryPolicy(prefix string) Policy {
	return Policy{
		{Methods: []string{http.MethodPost, http.MethodGet}, Path: prefix + "/users", Require: Admin},
		{Methods: []string{http.MethodDelete}, Path: prefix + "/users/:id", Require: Admin},
		{Methods: []string{http.MethodGet, http.MethodPut}, Path: prefix + "/users/:id", Require: SelfOrAdmin},
		{Methods: []string{http.MethodGet}, Path: prefix + "/books", Require: Authenticated},
		{Methods: []string{http.MethodPost, http.MethodDelete}, Path: prefix + "/books", Require: Admin},
		{Methods: []string{http.MethodGet}, Path: prefix + "/books/:id", Require: Authenticated},
		{Methods: []string{http.MethodPost}, Path: prefix + "/books/borrow", Require: Admin},
		{Methods: []string{http.MethodPost}, Path: prefix + "/books/return", Require: Admin},
		{Methods: []string{http.MethodPost}, Path: prefix + "/auth/token", Require: Authenticated},
	}
}
