package signing

import (
	"encoding/json"
	"fmt"
)

// Certificate expiration check tokens recognized in configuration.
const (
	CertificateExpirationEnabled  = "enabled"
	CertificateExpirationDisabled = "disabled"
)

// Certificate revocation check tokens recognized in configuration.
const (
	CertificateRevocationStrict        = "strict"
	CertificateRevocationAllowSoftFail = "allowSoftFail"
	CertificateRevocationDisabled      = "disabled"
)

// SecurityConfig is a registry's declarative security configuration. It is
// externally supplied and read-only; the validator never mutates or caches it.
//
// Optional fields are pointers or empty strings so that "not set" is
// distinguishable from an explicit value: unset fields leave the verifier's
// own defaults in effect, while unset trust actions are configuration errors
// when their path is exercised.
type SecurityConfig struct {
	// OnUnsigned is the action taken when a release carries no signature.
	OnUnsigned TrustAction `json:"onUnsigned"`

	// OnUntrustedCertificate is the action taken when a release is signed by
	// a certificate that does not chain to a trusted root.
	OnUntrustedCertificate TrustAction `json:"onUntrustedCertificate"`

	// TrustedRootCertificatesPath is a directory of trust-anchor certificates.
	// Empty means no additional trust anchors.
	TrustedRootCertificatesPath string `json:"trustedRootCertificatesPath,omitempty"`

	// IncludeDefaultTrustedRootCertificates controls whether the verifier's
	// built-in default trust store is also used. Nil leaves the verifier's
	// default in effect.
	IncludeDefaultTrustedRootCertificates *bool `json:"includeDefaultTrustedRootCertificates,omitempty"`

	// ValidationChecks overrides individual certificate checks.
	ValidationChecks *ValidationChecks `json:"validationChecks,omitempty"`
}

// ValidationChecks selectively overrides certificate validation behavior.
// Empty fields leave the verifier's defaults in effect.
type ValidationChecks struct {
	// CertificateExpiration is "enabled" or "disabled".
	CertificateExpiration string `json:"certificateExpiration,omitempty"`

	// CertificateRevocation is "strict", "allowSoftFail", or "disabled".
	CertificateRevocation string `json:"certificateRevocation,omitempty"`
}

// ParseSecurityConfig decodes a JSON security configuration and validates
// every token that is present.
func ParseSecurityConfig(data []byte) (*SecurityConfig, error) {
	var cfg SecurityConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse security configuration: %v", ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every configured token is recognized. It does not
// require the trust actions to be set; an unset action only fails when its
// path is exercised.
func (c *SecurityConfig) Validate() error {
	if c.OnUnsigned != "" {
		if _, err := ParseTrustAction(string(c.OnUnsigned)); err != nil {
			return fmt.Errorf("onUnsigned: %w", err)
		}
	}
	if c.OnUntrustedCertificate != "" {
		if _, err := ParseTrustAction(string(c.OnUntrustedCertificate)); err != nil {
			return fmt.Errorf("onUntrustedCertificate: %w", err)
		}
	}
	if checks := c.ValidationChecks; checks != nil {
		switch checks.CertificateExpiration {
		case "", CertificateExpirationEnabled, CertificateExpirationDisabled:
		default:
			return fmt.Errorf("%w: unknown certificateExpiration value %q", ErrInvalidConfiguration, checks.CertificateExpiration)
		}
		switch checks.CertificateRevocation {
		case "", CertificateRevocationStrict, CertificateRevocationAllowSoftFail, CertificateRevocationDisabled:
		default:
			return fmt.Errorf("%w: unknown certificateRevocation value %q", ErrInvalidConfiguration, checks.CertificateRevocation)
		}
	}
	return nil
}
