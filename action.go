package signing

import "fmt"

// TrustAction is an administrator-configured response to a trust concern.
// Two independent actions exist per registry configuration: one for unsigned
// releases and one for releases signed by an untrusted certificate.
//
// The zero value means "not configured"; the policy engine treats that as a
// fatal configuration error rather than defaulting.
type TrustAction string

const (
	// TrustActionPrompt asks the configured delegate whether to continue.
	TrustActionPrompt TrustAction = "prompt"

	// TrustActionError rejects the release immediately.
	TrustActionError TrustAction = "error"

	// TrustActionWarn emits a warning observation and accepts the release
	// without a signing entity.
	TrustActionWarn TrustAction = "warn"

	// TrustActionSilentAllow accepts the release without a signing entity
	// and without any observation.
	TrustActionSilentAllow TrustAction = "silentAllow"
)

// ParseTrustAction parses a trust action token from configuration.
func ParseTrustAction(token string) (TrustAction, error) {
	switch TrustAction(token) {
	case TrustActionPrompt, TrustActionError, TrustActionWarn, TrustActionSilentAllow:
		return TrustAction(token), nil
	default:
		return "", fmt.Errorf("%w: unknown trust action %q", ErrInvalidConfiguration, token)
	}
}
