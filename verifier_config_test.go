package signing

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTrustRoot(t *testing.T, fs billy.Filesystem, name string, data []byte) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, data, 0o644))
}

func TestBuildVerifierConfiguration(t *testing.T) {
	t.Run("no trust root path configured", func(t *testing.T) {
		cfg, err := BuildVerifierConfiguration(memfs.New(), &SecurityConfig{})
		require.NoError(t, err)

		assert.Empty(t, cfg.TrustRoots)
		assert.Nil(t, cfg.IncludeDefaultTrustStore)
		assert.Nil(t, cfg.ExpirationCheck)
		assert.Nil(t, cfg.RevocationCheck)
	})

	t.Run("loads all trust roots in directory order", func(t *testing.T) {
		fs := memfs.New()
		writeTrustRoot(t, fs, "/trust/a.pem", []byte("anchor-a"))
		writeTrustRoot(t, fs, "/trust/b.pem", []byte("anchor-b"))
		writeTrustRoot(t, fs, "/trust/c.pem", []byte("anchor-c"))

		cfg, err := BuildVerifierConfiguration(fs, &SecurityConfig{
			TrustedRootCertificatesPath: "/trust",
		})
		require.NoError(t, err)

		require.Len(t, cfg.TrustRoots, 3)
		assert.Equal(t, []byte("anchor-a"), cfg.TrustRoots[0])
		assert.Equal(t, []byte("anchor-b"), cfg.TrustRoots[1])
		assert.Equal(t, []byte("anchor-c"), cfg.TrustRoots[2])
	})

	t.Run("missing directory fails naming the path", func(t *testing.T) {
		_, err := BuildVerifierConfiguration(memfs.New(), &SecurityConfig{
			TrustedRootCertificatesPath: "/does/not/exist",
		})
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "/does/not/exist")
	})

	t.Run("path resolving to a file fails", func(t *testing.T) {
		fs := memfs.New()
		writeTrustRoot(t, fs, "/trust", []byte("not a directory"))

		_, err := BuildVerifierConfiguration(fs, &SecurityConfig{
			TrustedRootCertificatesPath: "/trust",
		})
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("unreadable entry fails the whole build", func(t *testing.T) {
		fs := memfs.New()
		writeTrustRoot(t, fs, "/trust/a.pem", []byte("anchor-a"))
		require.NoError(t, fs.MkdirAll("/trust/nested", 0o755))
		writeTrustRoot(t, fs, "/trust/nested/inner.pem", []byte("anchor-inner"))

		_, err := BuildVerifierConfiguration(fs, &SecurityConfig{
			TrustedRootCertificatesPath: "/trust",
		})
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "nested")
	})

	t.Run("default trust store flag copied through only when set", func(t *testing.T) {
		include := true
		cfg, err := BuildVerifierConfiguration(memfs.New(), &SecurityConfig{
			IncludeDefaultTrustedRootCertificates: &include,
		})
		require.NoError(t, err)
		require.NotNil(t, cfg.IncludeDefaultTrustStore)
		assert.True(t, *cfg.IncludeDefaultTrustStore)
	})

	t.Run("validation checks copied through", func(t *testing.T) {
		cfg, err := BuildVerifierConfiguration(memfs.New(), &SecurityConfig{
			ValidationChecks: &ValidationChecks{
				CertificateExpiration: CertificateExpirationDisabled,
				CertificateRevocation: CertificateRevocationStrict,
			},
		})
		require.NoError(t, err)

		require.NotNil(t, cfg.ExpirationCheck)
		assert.False(t, cfg.ExpirationCheck.Enabled)
		require.NotNil(t, cfg.RevocationCheck)
		assert.Equal(t, RevocationStrict, *cfg.RevocationCheck)
	})

	t.Run("empty validation checks keep verifier defaults", func(t *testing.T) {
		cfg, err := BuildVerifierConfiguration(memfs.New(), &SecurityConfig{
			ValidationChecks: &ValidationChecks{},
		})
		require.NoError(t, err)

		assert.Nil(t, cfg.ExpirationCheck)
		assert.Nil(t, cfg.RevocationCheck)
	})
}
