package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecurityConfig(t *testing.T) {
	t.Run("full configuration", func(t *testing.T) {
		data := []byte(`{
			"onUnsigned": "prompt",
			"onUntrustedCertificate": "warn",
			"trustedRootCertificatesPath": "/etc/registry/trust",
			"includeDefaultTrustedRootCertificates": false,
			"validationChecks": {
				"certificateExpiration": "enabled",
				"certificateRevocation": "allowSoftFail"
			}
		}`)

		cfg, err := ParseSecurityConfig(data)
		require.NoError(t, err)

		assert.Equal(t, TrustActionPrompt, cfg.OnUnsigned)
		assert.Equal(t, TrustActionWarn, cfg.OnUntrustedCertificate)
		assert.Equal(t, "/etc/registry/trust", cfg.TrustedRootCertificatesPath)
		require.NotNil(t, cfg.IncludeDefaultTrustedRootCertificates)
		assert.False(t, *cfg.IncludeDefaultTrustedRootCertificates)
		require.NotNil(t, cfg.ValidationChecks)
		assert.Equal(t, CertificateExpirationEnabled, cfg.ValidationChecks.CertificateExpiration)
		assert.Equal(t, CertificateRevocationAllowSoftFail, cfg.ValidationChecks.CertificateRevocation)
	})

	t.Run("optional fields absent stay unset", func(t *testing.T) {
		cfg, err := ParseSecurityConfig([]byte(`{"onUnsigned": "error", "onUntrustedCertificate": "error"}`))
		require.NoError(t, err)

		assert.Nil(t, cfg.IncludeDefaultTrustedRootCertificates)
		assert.Nil(t, cfg.ValidationChecks)
		assert.Empty(t, cfg.TrustedRootCertificatesPath)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseSecurityConfig([]byte(`{`))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unknown action token", func(t *testing.T) {
		_, err := ParseSecurityConfig([]byte(`{"onUnsigned": "maybe"}`))
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "onUnsigned")
	})

	t.Run("unknown expiration token", func(t *testing.T) {
		_, err := ParseSecurityConfig([]byte(`{"validationChecks": {"certificateExpiration": "sometimes"}}`))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("unknown revocation token", func(t *testing.T) {
		_, err := ParseSecurityConfig([]byte(`{"validationChecks": {"certificateRevocation": "never"}}`))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestParseTrustAction(t *testing.T) {
	for _, token := range []string{"prompt", "error", "warn", "silentAllow"} {
		action, err := ParseTrustAction(token)
		require.NoError(t, err, token)
		assert.Equal(t, TrustAction(token), action)
	}

	_, err := ParseTrustAction("allow")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = ParseTrustAction("")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
