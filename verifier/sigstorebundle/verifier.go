// Package sigstorebundle verifies sigstore bundle package signatures.
//
// It implements the core signing.SignatureVerifier interface for the
// "sigstore-bundle-0.3" signature format: the signature bytes are a sigstore
// bundle (JSON) whose subject is the source archive.
//
// Sigstore trust is anchored in trusted material (TUF-distributed trusted
// roots), not in the per-registry certificate anchors of the verifier
// configuration; the configuration's TrustRoots are therefore not consulted
// here. Expiration and revocation semantics are owned by sigstore-go.
package sigstorebundle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sigstore/sigstore-go/pkg/bundle"
	"github.com/sigstore/sigstore-go/pkg/root"
	"github.com/sigstore/sigstore-go/pkg/verify"

	"github.com/packsure/signing"
)

// Verifier verifies sigstore bundles against trusted material.
type Verifier struct {
	trusted  root.TrustedMaterial
	identity *verify.CertificateIdentity
	logger   *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier) error

// WithTrustedMaterial sets the trusted material bundles are verified against.
// Defaults to the public Sigstore instance's trusted root.
func WithTrustedMaterial(trusted root.TrustedMaterial) Option {
	return func(v *Verifier) error {
		v.trusted = trusted
		return nil
	}
}

// WithCertificateIdentity requires the signing certificate to match the given
// identity. Without it any valid signature is accepted regardless of signer.
func WithCertificateIdentity(identity verify.CertificateIdentity) Option {
	return func(v *Verifier) error {
		v.identity = &identity
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) error {
		v.logger = logger
		return nil
	}
}

// NewVerifier creates a sigstore bundle verifier.
func NewVerifier(opts ...Option) (*Verifier, error) {
	v := &Verifier{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if v.trusted == nil {
		trusted, err := root.FetchTrustedRoot()
		if err != nil {
			return nil, fmt.Errorf("sigstorebundle: fetch trusted root: %w", err)
		}
		v.trusted = trusted
	}
	return v, nil
}

// Verify implements signing.SignatureVerifier.
func (v *Verifier) Verify(ctx context.Context, signature, content []byte, format signing.SignatureFormat, _ *signing.VerifierConfiguration) (signing.VerificationOutcome, error) {
	if format != signing.SignatureFormatSigstoreBundle {
		return signing.VerificationOutcome{}, fmt.Errorf("sigstorebundle: unsupported signature format %q", format)
	}
	if err := ctx.Err(); err != nil {
		return signing.VerificationOutcome{}, err
	}

	var b bundle.Bundle
	if err := b.UnmarshalJSON(signature); err != nil {
		return signing.InvalidOutcome(fmt.Sprintf("parse bundle: %v", err)), nil
	}

	verifier, err := verify.NewVerifier(
		v.trusted,
		verify.WithObserverTimestamps(1),
		verify.WithTransparencyLog(1),
	)
	if err != nil {
		return signing.VerificationOutcome{}, fmt.Errorf("sigstorebundle: create verifier: %w", err)
	}

	policyOpts := []verify.PolicyOption{verify.WithoutIdentitiesUnsafe()}
	if v.identity != nil {
		policyOpts = []verify.PolicyOption{verify.WithCertificateIdentity(*v.identity)}
	}
	policy := verify.NewPolicy(
		verify.WithArtifact(bytes.NewReader(content)),
		policyOpts...,
	)

	result, err := verifier.Verify(&b, policy)
	if err != nil {
		v.logger.Debug("sigstorebundle: bundle verification failed", slog.Any("error", err))
		return signing.InvalidOutcome(err.Error()), nil
	}

	entity := entityFromResult(result)
	return signing.ValidOutcome(entity), nil
}

// entityFromResult derives a signing entity from the verified certificate
// summary, when one is present (keyful bundles).
func entityFromResult(result *verify.VerificationResult) *signing.SigningEntity {
	if result == nil || result.Signature == nil || result.Signature.Certificate == nil {
		return &signing.SigningEntity{}
	}
	summary := result.Signature.Certificate
	return &signing.SigningEntity{
		CommonName:   summary.SubjectAlternativeName,
		Organization: summary.Extensions.Issuer,
	}
}

// Ensure Verifier implements signing.SignatureVerifier.
var _ signing.SignatureVerifier = (*Verifier)(nil)
