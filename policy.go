package signing

import (
	"context"
	"fmt"
	"log/slog"
)

// PromptRequest identifies the release a delegate is being asked about.
type PromptRequest struct {
	Registry string
	Package  Package
	Version  string
}

// Delegate answers interactive trust questions when a [TrustActionPrompt]
// action is configured. Each method is asked at most once per validation call
// and must be answered exactly once; true means "continue despite the
// concern."
//
// The prompt subpackage provides auto-accept, auto-reject, and terminal
// implementations.
type Delegate interface {
	// ConfirmUnsigned asks whether to accept a release that carries no
	// signature.
	ConfirmUnsigned(ctx context.Context, req PromptRequest) (bool, error)

	// ConfirmUntrusted asks whether to accept a release whose signing
	// certificate does not chain to a trusted root.
	ConfirmUntrusted(ctx context.Context, req PromptRequest) (bool, error)
}

// policyEngine applies the registry's configured trust actions to the two
// trust-failure categories. Acceptance on any policy path never carries a
// signing entity: even a detected-but-untrusted identity is dropped rather
// than recorded as trusted.
type policyEngine struct {
	delegate Delegate
	logger   *slog.Logger
}

// resolveUnsigned applies the onUnsigned action.
//
// decided reports whether a trust decision was reached: true with a nil error
// means the release is accepted without a signing entity, true with an error
// means the policy rejected it. false means the policy could not run at all
// (missing or unusable configuration, delegate failure).
func (p *policyEngine) resolveUnsigned(ctx context.Context, req Request) (decided bool, err error) {
	reject := fmt.Errorf("%w: %s@%s from %s", ErrNotSigned, req.Package, req.Version, req.Registry)

	switch req.Config.OnUnsigned {
	case "":
		return false, fmt.Errorf("%w: onUnsigned", ErrMissingConfiguration)

	case TrustActionPrompt:
		allow, err := p.prompt(ctx, req, "unsigned")
		if err != nil {
			return false, err
		}
		if !allow {
			return true, reject
		}
		return true, nil

	case TrustActionError:
		return true, reject

	case TrustActionWarn:
		p.logger.Warn("accepting unsigned package release per policy",
			slog.String("registry", req.Registry),
			slog.String("package", req.Package.String()),
			slog.String("version", req.Version))
		return true, nil

	case TrustActionSilentAllow:
		return true, nil

	default:
		return false, fmt.Errorf("%w: unknown onUnsigned action %q", ErrInvalidConfiguration, req.Config.OnUnsigned)
	}
}

// resolveUntrusted applies the onUntrustedCertificate action. The detected
// entity is used for reporting only and never flows into the result.
func (p *policyEngine) resolveUntrusted(ctx context.Context, req Request, entity *SigningEntity) (decided bool, err error) {
	signer := "unknown signing entity"
	if entity != nil {
		signer = entity.String()
	}
	reject := fmt.Errorf("%w: %s@%s from %s signed by %s", ErrSignerUntrusted, req.Package, req.Version, req.Registry, signer)

	switch req.Config.OnUntrustedCertificate {
	case "":
		return false, fmt.Errorf("%w: onUntrustedCertificate", ErrMissingConfiguration)

	case TrustActionPrompt:
		allow, err := p.prompt(ctx, req, "untrusted")
		if err != nil {
			return false, err
		}
		if !allow {
			return true, reject
		}
		// Accepted, but the untrusted identity is intentionally dropped.
		return true, nil

	case TrustActionError:
		return true, reject

	case TrustActionWarn:
		p.logger.Warn("accepting package release from untrusted signer per policy",
			slog.String("registry", req.Registry),
			slog.String("package", req.Package.String()),
			slog.String("version", req.Version),
			slog.String("signer", signer))
		return true, nil

	case TrustActionSilentAllow:
		return true, nil

	default:
		return false, fmt.Errorf("%w: unknown onUntrustedCertificate action %q", ErrInvalidConfiguration, req.Config.OnUntrustedCertificate)
	}
}

// prompt drives the delegate for one category. A prompt action without a
// connected delegate is a configuration error, never a silent allow.
func (p *policyEngine) prompt(ctx context.Context, req Request, category string) (bool, error) {
	if p.delegate == nil {
		return false, fmt.Errorf("%w: %s action is %q but no delegate is configured", ErrInvalidConfiguration, category, TrustActionPrompt)
	}

	preq := PromptRequest{Registry: req.Registry, Package: req.Package, Version: req.Version}

	var (
		allow bool
		err   error
	)
	switch category {
	case "unsigned":
		allow, err = p.delegate.ConfirmUnsigned(ctx, preq)
	default:
		allow, err = p.delegate.ConfirmUntrusted(ctx, preq)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDelegateFailure, err)
	}
	return allow, nil
}
