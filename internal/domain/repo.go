package domain

import (
	"fmt"
	"strings"
)

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepoRef parses an "owner/name" string.
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository %q (expected owner/name)", s)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

// String returns the repository in "owner/name" form.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}
