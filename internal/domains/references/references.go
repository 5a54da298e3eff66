// Package references models typed resource names as a tagged union instead
// of a subclass hierarchy. Each Reference carries a Kind plus the fields that
// kind requires; formatting and path construction switch exhaustively on the
// kind.
package references

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindUnspecified Kind = iota
	KindProject
	KindLocation
	KindOperation
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindLocation:
		return "location"
	case KindOperation:
		return "operation"
	default:
		return "unspecified"
	}
}

type Reference struct {
	Kind     Kind
	Project  string
	Location string
	ID       string
}

// Defaults supplies scoping fields filled in when an identifier omits them,
// the way the bq CLI falls back to the configured project.
type Defaults struct {
	Project  string
	Location string
}

func Project(project string) Reference {
	return Reference{Kind: KindProject, Project: project}
}

func Location(project, location string) Reference {
	return Reference{Kind: KindLocation, Project: project, Location: location}
}

func Operation(project, location, id string) Reference {
	return Reference{Kind: KindOperation, Project: project, Location: location, ID: id}
}

// RelativeName renders the canonical resource path for the reference's kind.
// A reference with no scoping fields renders the short "operations/<id>"
// form.
func (r Reference) RelativeName() (string, error) {
	switch r.Kind {
	case KindProject:
		if r.Project == "" {
			return "", fmt.Errorf("%w: project reference without project", ErrIncompleteReference)
		}
		return "projects/" + r.Project, nil
	case KindLocation:
		if r.Project == "" || r.Location == "" {
			return "", fmt.Errorf("%w: location reference needs project and location", ErrIncompleteReference)
		}
		return "projects/" + r.Project + "/locations/" + r.Location, nil
	case KindOperation:
		if r.ID == "" {
			return "", fmt.Errorf("%w: operation reference without id", ErrIncompleteReference)
		}
		if r.Project == "" && r.Location == "" {
			return "operations/" + r.ID, nil
		}
		if r.Project == "" || r.Location == "" {
			return "", fmt.Errorf("%w: operation reference with partial scoping", ErrIncompleteReference)
		}
		return "projects/" + r.Project + "/locations/" + r.Location + "/operations/" + r.ID, nil
	default:
		return "", fmt.Errorf("%w: kind %v", ErrUnknownKind, r.Kind)
	}
}

func (r Reference) String() string {
	name, err := r.RelativeName()
	if err != nil {
		return fmt.Sprintf("<invalid %s reference>", r.Kind)
	}
	return name
}

// ParseOperation resolves a user-supplied identifier into an operation
// reference. Accepted forms, in fallback order:
//
//	projects/<p>/locations/<l>/operations/<id>
//	operations/<id>
//	<id>                       (scoped by defaults when they are set)
func ParseOperation(s string, defaults Defaults) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, fmt.Errorf("%w: empty identifier", ErrUnresolvable)
	}

	if !strings.Contains(s, "/") {
		return Operation(defaults.Project, defaults.Location, s), nil
	}

	parts := strings.Split(s, "/")
	switch {
	case len(parts) == 2 && parts[0] == "operations" && parts[1] != "":
		return Operation(defaults.Project, defaults.Location, parts[1]), nil
	case len(parts) == 6 && parts[0] == "projects" && parts[2] == "locations" && parts[4] == "operations":
		if parts[1] == "" || parts[3] == "" || parts[5] == "" {
			return Reference{}, fmt.Errorf("%w: %q", ErrUnresolvable, s)
		}
		return Operation(parts[1], parts[3], parts[5]), nil
	default:
		return Reference{}, fmt.Errorf("%w: %q", ErrUnresolvable, s)
	}
}
