// Package signing validates the authenticity of downloaded package releases
// before a registry client trusts them.
//
// The entry point is [Validator], which runs the full validation pipeline for
// one release: fetch the release metadata, decode the source-archive
// signature, build a verifier configuration from the registry's security
// configuration, verify the signature, apply the registry's trust policy, and
// reconcile the decided signing entity with a prior-trust ledger. The pipeline
// produces exactly one terminal result per call.
//
// The cryptographic work itself is behind the [SignatureVerifier] interface;
// the verifier/cms and verifier/sigstorebundle subpackages provide concrete
// implementations. Prior-trust bookkeeping is behind [TrustLedger] (see the
// trust subpackage), and interactive consent is behind [Delegate] (see the
// prompt subpackage).
//
// Trust decisions are driven by the registry's [SecurityConfig]: one
// [TrustAction] for unsigned releases and one for releases signed by an
// untrusted certificate. Missing actions are configuration errors, never
// silent defaults.
package signing
