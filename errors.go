package signing

import "errors"

// Sentinel errors for release validation.
var (
	// ErrMetadataUnavailable is returned when release metadata cannot be retrieved.
	ErrMetadataUnavailable = errors.New("signing: release metadata unavailable")

	// ErrMissingSourceArchive is returned when release metadata carries no
	// source-archive resource at all.
	ErrMissingSourceArchive = errors.New("signing: release has no source archive")

	// ErrNotSigned is returned when the source archive carries no signature.
	// During decoding it routes the release to the unsigned-handling policy;
	// it is also the rejection error produced when that policy denies the release.
	ErrNotSigned = errors.New("signing: release is not signed")

	// ErrMissingSignatureFormat is returned when a signature is present but its
	// format token is absent.
	ErrMissingSignatureFormat = errors.New("signing: missing signature format")

	// ErrUnknownSignatureFormat is returned when the signature format token is
	// not a recognized format.
	ErrUnknownSignatureFormat = errors.New("signing: unknown signature format")

	// ErrMalformedSignature is returned when the signature payload is present
	// but not validly encoded.
	ErrMalformedSignature = errors.New("signing: malformed signature payload")

	// ErrInvalidSignature is returned when the verifier finds the signature
	// cryptographically invalid.
	ErrInvalidSignature = errors.New("signing: invalid signature")

	// ErrInvalidCertificate is returned when the verifier finds the signing
	// certificate invalid.
	ErrInvalidCertificate = errors.New("signing: invalid signing certificate")

	// ErrSignerUntrusted is returned when the signing certificate does not
	// chain to a trusted root and the untrusted-certificate policy rejects
	// the release.
	ErrSignerUntrusted = errors.New("signing: signer not trusted")

	// ErrVerifierFailure is returned when the verifier itself fails to run.
	ErrVerifierFailure = errors.New("signing: signature verifier failure")

	// ErrMissingConfiguration is returned when the security configuration
	// lacks a required setting.
	ErrMissingConfiguration = errors.New("signing: missing configuration")

	// ErrInvalidConfiguration is returned when the security configuration or
	// trust-root directory is unusable.
	ErrInvalidConfiguration = errors.New("signing: invalid configuration")

	// ErrDelegateFailure is returned when a configured delegate fails to
	// answer a prompt.
	ErrDelegateFailure = errors.New("signing: delegate failure")
)
