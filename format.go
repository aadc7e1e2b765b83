package signing

import "fmt"

// SignatureFormat names a supported signature encoding. Format tokens arrive
// as strings in registry release metadata; unrecognized tokens are a hard
// validation failure.
type SignatureFormat string

// Supported signature formats.
const (
	// SignatureFormatCMS is a detached CMS (PKCS#7) signature over the
	// source-archive bytes.
	SignatureFormatCMS SignatureFormat = "cms-1.0.0"

	// SignatureFormatSigstoreBundle is a sigstore bundle (JSON) covering the
	// source-archive bytes.
	SignatureFormatSigstoreBundle SignatureFormat = "sigstore-bundle-0.3"
)

// ParseSignatureFormat parses a signature format token from release metadata.
func ParseSignatureFormat(token string) (SignatureFormat, error) {
	switch SignatureFormat(token) {
	case SignatureFormatCMS:
		return SignatureFormatCMS, nil
	case SignatureFormatSigstoreBundle:
		return SignatureFormatSigstoreBundle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSignatureFormat, token)
	}
}
