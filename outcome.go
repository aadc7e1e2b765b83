package signing

import "context"

// OutcomeKind enumerates the classified results a verifier can produce.
type OutcomeKind int

const (
	// OutcomeValid means the signature verified and the certificate chains to
	// a trusted root. The outcome carries the signing entity.
	OutcomeValid OutcomeKind = iota

	// OutcomeInvalid means the signature is cryptographically invalid.
	OutcomeInvalid

	// OutcomeCertificateInvalid means the signing certificate itself is
	// invalid (for example expired or malformed).
	OutcomeCertificateInvalid

	// OutcomeCertificateUntrusted means the signature verified but the
	// certificate does not chain to a trusted root. The outcome carries the
	// detected (untrusted) signing entity.
	OutcomeCertificateUntrusted
)

// String returns the outcome kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeCertificateInvalid:
		return "certificate-invalid"
	case OutcomeCertificateUntrusted:
		return "certificate-untrusted"
	default:
		return "unknown"
	}
}

// VerificationOutcome is the classified result of one verification attempt.
// It is produced once per attempt by a [SignatureVerifier] and consumed
// exactly once by the trust policy engine.
//
// Entity is set for [OutcomeValid] and [OutcomeCertificateUntrusted];
// Reason is set for [OutcomeInvalid] and [OutcomeCertificateInvalid].
type VerificationOutcome struct {
	Kind   OutcomeKind
	Entity *SigningEntity
	Reason string
}

// ValidOutcome reports a verified signature from the given entity.
func ValidOutcome(entity *SigningEntity) VerificationOutcome {
	return VerificationOutcome{Kind: OutcomeValid, Entity: entity}
}

// InvalidOutcome reports a cryptographically invalid signature.
func InvalidOutcome(reason string) VerificationOutcome {
	return VerificationOutcome{Kind: OutcomeInvalid, Reason: reason}
}

// CertificateInvalidOutcome reports an invalid signing certificate.
func CertificateInvalidOutcome(reason string) VerificationOutcome {
	return VerificationOutcome{Kind: OutcomeCertificateInvalid, Reason: reason}
}

// CertificateUntrustedOutcome reports a verified signature whose certificate
// does not chain to a trusted root.
func CertificateUntrustedOutcome(entity *SigningEntity) VerificationOutcome {
	return VerificationOutcome{Kind: OutcomeCertificateUntrusted, Entity: entity}
}

// SignatureVerifier performs cryptographic signature verification and
// certificate-chain validation. Implementations classify every verification
// attempt into a [VerificationOutcome]; the error return is reserved for the
// verifier itself failing to run.
type SignatureVerifier interface {
	Verify(ctx context.Context, signature, content []byte, format SignatureFormat, cfg *VerifierConfiguration) (VerificationOutcome, error)
}
