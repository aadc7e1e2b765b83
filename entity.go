package signing

import "fmt"

// Package identifies a package within a registry by scope and name.
type Package struct {
	Scope string
	Name  string
}

// String returns the canonical "scope.name" form.
func (p Package) String() string {
	return p.Scope + "." + p.Name
}

// SigningEntity identifies who produced a signature, derived from the signer
// certificate's subject. It is produced only by verifiers and compared for
// equality during prior-trust reconciliation.
type SigningEntity struct {
	CommonName         string
	Organization       string
	OrganizationalUnit string
}

// String returns a human-readable description of the entity.
func (e SigningEntity) String() string {
	switch {
	case e.CommonName != "" && e.Organization != "":
		return fmt.Sprintf("%s (%s)", e.CommonName, e.Organization)
	case e.CommonName != "":
		return e.CommonName
	case e.Organization != "":
		return e.Organization
	default:
		return "unknown signing entity"
	}
}

// Request describes one release to validate.
type Request struct {
	// Registry is the URL or identifier of the registry the release came from.
	// Used for error context, prompting, and prior-trust bookkeeping.
	Registry string

	// Package is the scoped package identity.
	Package Package

	// Version is the release version being validated.
	Version string

	// Content is the downloaded source-archive bytes the signature covers.
	Content []byte

	// Config is the registry's security configuration.
	Config *SecurityConfig
}

func (r *Request) validate() error {
	if r.Config == nil {
		return fmt.Errorf("%w: registry security configuration", ErrMissingConfiguration)
	}
	return nil
}

// Result is the successful outcome of a validation call.
type Result struct {
	// SigningEntity is the entity the release was verified against, or nil
	// when the release was accepted without one (unsigned or policy-allowed).
	SigningEntity *SigningEntity
}

// Completion carries the terminal result of an asynchronous validation call.
// Exactly one of Result or Err is set.
type Completion struct {
	Result *Result
	Err    error
}
