package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Resource names one of the repository statistics resources.
type Resource string

const (
	ResourceContributors   Resource = "contributors"
	ResourceCommitActivity Resource = "commit_activity"
	ResourceCodeFrequency  Resource = "code_frequency"
	ResourceParticipation  Resource = "participation"
	ResourcePunchCard      Resource = "punch_card"
)

// Resources lists every statistics resource in a stable order.
var Resources = []Resource{
	ResourceContributors,
	ResourceCommitActivity,
	ResourceCodeFrequency,
	ResourceParticipation,
	ResourcePunchCard,
}

// Valid reports whether r is a known statistics resource.
func (r Resource) Valid() bool {
	for _, known := range Resources {
		if r == known {
			return true
		}
	}
	return false
}

// Endpoint addresses one statistics resource of one repository.
// The zero value is invalid; use NewEndpoint.
type Endpoint struct {
	owner    string
	repo     string
	resource Resource
}

// NewEndpoint validates its arguments and returns an Endpoint.
func NewEndpoint(owner, repo string, resource Resource) (Endpoint, error) {
	e := Endpoint{owner: owner, repo: repo, resource: resource}
	if err := e.validate(); err != nil {
		return Endpoint{}, err
	}
	return e, nil
}

func (e Endpoint) validate() error {
	if strings.TrimSpace(e.owner) == "" {
		return invalidArgument("owner", "must not be empty")
	}
	if strings.TrimSpace(e.repo) == "" {
		return invalidArgument("repository", "must not be empty")
	}
	if !e.resource.Valid() {
		return invalidArgument("resource", fmt.Sprintf("%q is not a statistics resource", e.resource))
	}
	return nil
}

// Owner returns the repository owner.
func (e Endpoint) Owner() string { return e.owner }

// Repo returns the repository name.
func (e Endpoint) Repo() string { return e.repo }

// Resource returns the statistics resource.
func (e Endpoint) Resource() Resource { return e.resource }

// Path returns the API path relative to the client's base URL.
func (e Endpoint) Path() string {
	return fmt.Sprintf("repos/%s/%s/stats/%s", url.PathEscape(e.owner), url.PathEscape(e.repo), e.resource)
}

// String returns the absolute API path, used in logs and errors.
func (e Endpoint) String() string {
	return "/" + e.Path()
}
