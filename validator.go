package signing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"
)

// TrustLedger records which signing entity was observed for a package so
// that later releases can be checked against it (trust on first use).
//
// The validator issues exactly one reconciliation per validation call that
// reaches a trust decision, carrying the decided entity or nil, and waits for
// it before completing. The ledger's answer is bookkeeping only; it never
// changes the outcome of the call that triggered it. Implementations must be
// safe for concurrent use, since independent validation calls may reconcile
// in parallel.
type TrustLedger interface {
	Reconcile(ctx context.Context, registry string, pkg Package, version string, entity *SigningEntity) error
}

// Validator runs the release validation pipeline.
//
// Each call is an independent unit of work with no shared mutable state;
// concurrent calls for different releases may run in parallel. The only
// resource shared across calls is the trust ledger, which provides its own
// synchronization.
type Validator struct {
	metadata MetadataProvider
	verifier SignatureVerifier
	ledger   TrustLedger

	delegate Delegate
	fs       billy.Filesystem
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Validator.
type Option func(*Validator) error

// WithDelegate connects a delegate for prompt-action trust policies.
func WithDelegate(delegate Delegate) Option {
	return func(v *Validator) error {
		v.delegate = delegate
		return nil
	}
}

// WithFilesystem sets the filesystem trust-root certificates are read from.
// Defaults to the OS filesystem rooted at /.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(v *Validator) error {
		v.fs = fs
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) error {
		v.logger = logger
		return nil
	}
}

// WithTimeout forwards a per-collaborator deadline to metadata retrieval and
// signature verification. It is a hint to those collaborators, not a bound
// the validator enforces on the pipeline as a whole.
func WithTimeout(timeout time.Duration) Option {
	return func(v *Validator) error {
		if timeout < 0 {
			return fmt.Errorf("%w: negative timeout", ErrInvalidConfiguration)
		}
		v.timeout = timeout
		return nil
	}
}

// NewValidator creates a validator around the three required collaborators.
func NewValidator(metadata MetadataProvider, verifier SignatureVerifier, ledger TrustLedger, opts ...Option) (*Validator, error) {
	if metadata == nil {
		return nil, errors.New("signing: metadata provider is required")
	}
	if verifier == nil {
		return nil, errors.New("signing: signature verifier is required")
	}
	if ledger == nil {
		return nil, errors.New("signing: trust ledger is required")
	}

	v := &Validator{
		metadata: metadata,
		verifier: verifier,
		ledger:   ledger,
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	if v.fs == nil {
		v.fs = osfs.New("/")
	}
	return v, nil
}

func (v *Validator) log() *slog.Logger {
	if v.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v.logger
}

// Validate runs the full pipeline for one release and returns its terminal
// result. The order of operations is strictly metadata, decode, build
// verifier configuration, verify, trust policy, reconcile, complete; decoding
// and verification are skipped for unsigned releases, and the policy step is
// skipped when verification is immediately valid.
//
// Reconciliation with the trust ledger happens on every path that reached a
// trust decision, including rejections, before Validate returns. Hard
// failures earlier in the pipeline return without reconciling.
func (v *Validator) Validate(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	entity, decided, err := v.run(ctx, req)
	if !decided {
		return nil, err
	}

	v.reconcile(ctx, req, entity)

	if err != nil {
		return nil, err
	}
	return &Result{SigningEntity: entity}, nil
}

// ValidateAsync runs Validate in its own goroutine and returns a channel that
// delivers exactly one Completion. The channel is buffered, so the result is
// never lost if the caller receives late.
func (v *Validator) ValidateAsync(ctx context.Context, req Request) <-chan Completion {
	done := make(chan Completion, 1)
	go func() {
		result, err := v.Validate(ctx, req)
		done <- Completion{Result: result, Err: err}
		close(done)
	}()
	return done
}

// ValidateAll validates independent releases concurrently. Results are
// returned in request order. The first failure cancels the remaining calls'
// contexts and is returned with package/version context.
func (v *Validator) ValidateAll(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			result, err := v.Validate(ctx, req)
			if err != nil {
				return fmt.Errorf("%s@%s: %w", req.Package, req.Version, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// run drives the pipeline to a trust decision. decided reports whether one
// was reached; if so, entity carries the decided signing entity (possibly
// nil) and err carries a policy rejection, if any.
func (v *Validator) run(ctx context.Context, req Request) (entity *SigningEntity, decided bool, err error) {
	log := v.log().With(
		slog.String("registry", req.Registry),
		slog.String("package", req.Package.String()),
		slog.String("version", req.Version))

	policy := &policyEngine{delegate: v.delegate, logger: v.log()}

	// Step 1: fetch release metadata.
	log.Debug("fetching release metadata")
	meta, err := v.fetchMetadata(ctx, req)
	if err != nil {
		return nil, false, err
	}

	// Step 2: decode the source-archive signature. A release that is merely
	// unsigned goes to the unsigned policy; every other decode failure is hard.
	signature, format, err := DecodeSignature(meta)
	if err != nil {
		if errors.Is(err, ErrNotSigned) {
			log.Debug("release is not signed, applying unsigned policy",
				slog.String("action", string(req.Config.OnUnsigned)))
			decided, err := policy.resolveUnsigned(ctx, req)
			return nil, decided, err
		}
		return nil, false, err
	}

	// Step 3: build the verifier configuration. Trust roots are re-read from
	// disk on every call.
	verifierCfg, err := BuildVerifierConfiguration(v.fs, req.Config)
	if err != nil {
		return nil, false, err
	}
	log.Debug("built verifier configuration",
		slog.Int("trust_roots", len(verifierCfg.TrustRoots)),
		slog.String("format", string(format)))

	// Step 4: verify the signature.
	outcome, err := v.verify(ctx, req, signature, format, verifierCfg)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrVerifierFailure, err)
	}
	log.Debug("signature verification finished", slog.String("outcome", outcome.Kind.String()))

	// Step 5: route the classified outcome.
	switch outcome.Kind {
	case OutcomeValid:
		return outcome.Entity, true, nil

	case OutcomeInvalid:
		return nil, false, fmt.Errorf("%w: %s@%s from %s: %s", ErrInvalidSignature, req.Package, req.Version, req.Registry, outcome.Reason)

	case OutcomeCertificateInvalid:
		return nil, false, fmt.Errorf("%w: %s@%s from %s: %s", ErrInvalidCertificate, req.Package, req.Version, req.Registry, outcome.Reason)

	case OutcomeCertificateUntrusted:
		decided, err := policy.resolveUntrusted(ctx, req, outcome.Entity)
		return nil, decided, err

	default:
		return nil, false, fmt.Errorf("%w: unexpected verification outcome %d", ErrVerifierFailure, outcome.Kind)
	}
}

func (v *Validator) fetchMetadata(ctx context.Context, req Request) (*ReleaseMetadata, error) {
	ctx, cancel := v.collaboratorContext(ctx)
	defer cancel()

	meta, err := v.metadata.GetReleaseMetadata(ctx, req.Package, req.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %s@%s from %s: %v", ErrMetadataUnavailable, req.Package, req.Version, req.Registry, err)
	}
	return meta, nil
}

func (v *Validator) verify(ctx context.Context, req Request, signature []byte, format SignatureFormat, cfg *VerifierConfiguration) (VerificationOutcome, error) {
	ctx, cancel := v.collaboratorContext(ctx)
	defer cancel()

	return v.verifier.Verify(ctx, signature, req.Content, format, cfg)
}

// collaboratorContext applies the optional timeout hint to a collaborator
// call. Without a timeout the caller's context is used as-is.
func (v *Validator) collaboratorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, v.timeout)
}

// reconcile forwards the decided signing entity to the trust ledger and waits
// for it. Ledger failures are reported, not propagated: the ledger observes
// the decision but never alters it.
func (v *Validator) reconcile(ctx context.Context, req Request, entity *SigningEntity) {
	if err := v.ledger.Reconcile(ctx, req.Registry, req.Package, req.Version, entity); err != nil {
		v.log().Warn("prior-trust reconciliation failed",
			slog.String("registry", req.Registry),
			slog.String("package", req.Package.String()),
			slog.String("version", req.Version),
			slog.Any("error", err))
	}
}
