package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault map[string]string

func (f fakeVault) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource("", "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsVaultEnabled())

	t.Setenv("CRM_TEST_SECRET", "s3cret")
	v, err := p.GetSecret(context.Background(), "CRM_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = p.GetSecret(context.Background(), "CRM_TEST_MISSING")
	assert.True(t, errors.Is(err, ErrSecretNotFound))
}

func TestProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_EnvOverridesVault(t *testing.T) {
	p := &Provider{source: SourceVault, vault: fakeVault{"crm-jwt-secret": "from-vault"}, logger: zap.NewNop()}

	v, err := p.GetSecretOrEnv(context.Background(), "crm-jwt-secret", "CRM_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("CRM_TEST_JWT", "from-env")
	v, err = p.GetSecretOrEnv(context.Background(), "crm-jwt-secret", "CRM_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}
