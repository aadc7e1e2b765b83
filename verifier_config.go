package signing

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ExpirationPolicy controls certificate expiration checking.
type ExpirationPolicy struct {
	// Enabled turns expiration checking on or off.
	Enabled bool

	// ReferenceTime is the instant certificates are validated against when
	// Enabled is true. Zero means the verifier chooses (normally "now").
	ReferenceTime time.Time
}

// RevocationPolicy controls certificate revocation checking.
type RevocationPolicy string

const (
	// RevocationStrict fails verification unless revocation status is
	// conclusively good.
	RevocationStrict RevocationPolicy = "strict"

	// RevocationAllowSoftFail treats an inconclusive revocation check as
	// non-fatal.
	RevocationAllowSoftFail RevocationPolicy = "allowSoftFail"

	// RevocationDisabled skips revocation checking entirely.
	RevocationDisabled RevocationPolicy = "disabled"
)

// VerifierConfiguration is the concrete configuration handed to a
// [SignatureVerifier] for one validation call. It is built fresh per call
// from the registry's [SecurityConfig] and never shared or mutated across
// calls.
//
// Nil pointer fields mean "verifier default": they are populated only when
// the registry configuration sets them explicitly.
type VerifierConfiguration struct {
	// TrustRoots holds raw certificate blobs loaded from the configured
	// trust-root directory, in directory-listing order.
	TrustRoots [][]byte

	// IncludeDefaultTrustStore controls whether the verifier's built-in
	// default trust store is used in addition to TrustRoots.
	IncludeDefaultTrustStore *bool

	// ExpirationCheck overrides the verifier's expiration checking.
	ExpirationCheck *ExpirationPolicy

	// RevocationCheck overrides the verifier's revocation checking.
	RevocationCheck *RevocationPolicy
}

// BuildVerifierConfiguration translates a registry security configuration
// plus an on-disk trust-root directory into a verifier configuration.
//
// Trust-root loading is all-or-nothing: a missing directory, a non-directory
// path, or any unreadable entry fails the whole build naming the offending
// path. No partial trust store is ever produced. Trust roots are re-read on
// every call; nothing is cached, so changes on disk take effect immediately.
func BuildVerifierConfiguration(fs billy.Filesystem, cfg *SecurityConfig) (*VerifierConfiguration, error) {
	vc := &VerifierConfiguration{}

	if dir := cfg.TrustedRootCertificatesPath; dir != "" {
		info, err := fs.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted root certificates path %q: %v", ErrInvalidConfiguration, dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: trusted root certificates path %q is not a directory", ErrInvalidConfiguration, dir)
		}

		entries, err := fs.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: list trusted root certificates in %q: %v", ErrInvalidConfiguration, dir, err)
		}
		for _, entry := range entries {
			name := fs.Join(dir, entry.Name())
			if entry.IsDir() {
				return nil, fmt.Errorf("%w: trusted root certificate %q is a directory", ErrInvalidConfiguration, name)
			}
			blob, err := util.ReadFile(fs, name)
			if err != nil {
				return nil, fmt.Errorf("%w: read trusted root certificate %q: %v", ErrInvalidConfiguration, name, err)
			}
			vc.TrustRoots = append(vc.TrustRoots, blob)
		}
	}

	// Copied through only when explicitly set; nil keeps the verifier default.
	vc.IncludeDefaultTrustStore = cfg.IncludeDefaultTrustedRootCertificates

	if checks := cfg.ValidationChecks; checks != nil {
		switch checks.CertificateExpiration {
		case "":
		case CertificateExpirationEnabled:
			vc.ExpirationCheck = &ExpirationPolicy{Enabled: true}
		case CertificateExpirationDisabled:
			vc.ExpirationCheck = &ExpirationPolicy{Enabled: false}
		default:
			return nil, fmt.Errorf("%w: unknown certificateExpiration value %q", ErrInvalidConfiguration, checks.CertificateExpiration)
		}

		switch checks.CertificateRevocation {
		case "":
		case CertificateRevocationStrict:
			policy := RevocationStrict
			vc.RevocationCheck = &policy
		case CertificateRevocationAllowSoftFail:
			policy := RevocationAllowSoftFail
			vc.RevocationCheck = &policy
		case CertificateRevocationDisabled:
			policy := RevocationDisabled
			vc.RevocationCheck = &policy
		default:
			return nil, fmt.Errorf("%w: unknown certificateRevocation value %q", ErrInvalidConfiguration, checks.CertificateRevocation)
		}
	}

	return vc, nil
}
