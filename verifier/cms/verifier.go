// Package cms verifies detached CMS (PKCS#7) package signatures against the
// trust anchors of a verifier configuration.
//
// It implements the core signing.SignatureVerifier interface for the
// "cms-1.0.0" signature format: the signature bytes are a detached CMS
// envelope whose signed content is the source archive.
package cms

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/digitorus/pkcs7"

	"github.com/packsure/signing"
)

var pemCertPrefix = []byte("-----BEGIN")

// Verifier verifies detached CMS signatures.
//
// Trust anchors come from the verifier configuration of each call. When the
// configuration's IncludeDefaultTrustStore is unset, the default is to use
// only the configured anchors; the system trust store is included only on
// explicit request.
type Verifier struct {
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a CMS signature verifier.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify implements signing.SignatureVerifier.
//
// Classification: a signature that does not parse or does not match the
// content is invalid; a signer chain that fails structural or validity checks
// yields certificate-invalid; a chain that does not reach a trust anchor
// yields certificate-untrusted, carrying the detected signing entity.
func (v *Verifier) Verify(ctx context.Context, signature, content []byte, format signing.SignatureFormat, cfg *signing.VerifierConfiguration) (signing.VerificationOutcome, error) {
	if format != signing.SignatureFormatCMS {
		return signing.VerificationOutcome{}, fmt.Errorf("cms: unsupported signature format %q", format)
	}
	if err := ctx.Err(); err != nil {
		return signing.VerificationOutcome{}, err
	}

	if revocation := cfg.RevocationCheck; revocation != nil {
		switch *revocation {
		case signing.RevocationStrict:
			return signing.VerificationOutcome{}, errors.New("cms: strict revocation checking is not supported")
		case signing.RevocationAllowSoftFail:
			v.logger.Debug("cms: revocation status not checked, continuing per soft-fail policy")
		}
	}

	envelope, err := pkcs7.Parse(signature)
	if err != nil {
		return signing.InvalidOutcome(fmt.Sprintf("parse CMS envelope: %v", err)), nil
	}
	// Detached signature: the envelope signs the source-archive bytes.
	envelope.Content = content

	signer := envelope.GetOnlySigner()
	if signer == nil {
		return signing.InvalidOutcome("CMS envelope must carry exactly one signer"), nil
	}
	entity := entityFromCertificate(signer)

	// Cryptographic validity first, trust separately below.
	if err := envelope.Verify(); err != nil {
		return signing.InvalidOutcome(err.Error()), nil
	}

	roots, err := trustPool(cfg)
	if err != nil {
		return signing.VerificationOutcome{}, err
	}

	intermediates := x509.NewCertPool()
	for _, cert := range envelope.Certificates {
		if !cert.Equal(signer) {
			intermediates.AddCert(cert)
		}
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if at, ok := chainVerificationTime(cfg, signer); ok {
		opts.CurrentTime = at
	}

	if _, err := signer.Verify(opts); err != nil {
		var invalid x509.CertificateInvalidError
		var hostname x509.HostnameError
		if errors.As(err, &invalid) || errors.As(err, &hostname) {
			return signing.CertificateInvalidOutcome(err.Error()), nil
		}
		v.logger.Debug("cms: signer chain did not reach a trust anchor",
			slog.String("signer", entity.String()),
			slog.Any("error", err))
		return signing.CertificateUntrustedOutcome(&entity), nil
	}

	return signing.ValidOutcome(&entity), nil
}

// chainVerificationTime resolves the instant chain validity is checked at.
// Disabling expiration is approximated by validating just inside the signer
// certificate's validity window, since x509 chain building has no way to
// skip validity periods outright.
func chainVerificationTime(cfg *signing.VerifierConfiguration, signer *x509.Certificate) (time.Time, bool) {
	expiration := cfg.ExpirationCheck
	if expiration == nil {
		return time.Time{}, false
	}
	if !expiration.Enabled {
		return signer.NotBefore.Add(time.Second), true
	}
	if !expiration.ReferenceTime.IsZero() {
		return expiration.ReferenceTime, true
	}
	return time.Time{}, false
}

// trustPool assembles the root pool from the configuration's trust anchors,
// accepting PEM and raw DER blobs.
func trustPool(cfg *signing.VerifierConfiguration) (*x509.CertPool, error) {
	var pool *x509.CertPool
	if include := cfg.IncludeDefaultTrustStore; include != nil && *include {
		system, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("cms: load system trust store: %w", err)
		}
		pool = system
	} else {
		pool = x509.NewCertPool()
	}

	for i, blob := range cfg.TrustRoots {
		if bytes.Contains(blob, pemCertPrefix) {
			if !pool.AppendCertsFromPEM(blob) {
				return nil, fmt.Errorf("cms: trust anchor %d: no usable PEM certificates", i)
			}
			continue
		}
		cert, err := x509.ParseCertificate(blob)
		if err != nil {
			return nil, fmt.Errorf("cms: trust anchor %d: %w", i, err)
		}
		pool.AddCert(cert)
	}
	return pool, nil
}

func entityFromCertificate(cert *x509.Certificate) signing.SigningEntity {
	entity := signing.SigningEntity{CommonName: cert.Subject.CommonName}
	if len(cert.Subject.Organization) > 0 {
		entity.Organization = cert.Subject.Organization[0]
	}
	if len(cert.Subject.OrganizationalUnit) > 0 {
		entity.OrganizationalUnit = cert.Subject.OrganizationalUnit[0]
	}
	return entity
}

// Ensure Verifier implements signing.SignatureVerifier.
var _ signing.SignatureVerifier = (*Verifier)(nil)
