package service

import (
	"context"
	"testing"

	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPluginFixture(t *testing.T) (*pluginService, *memFactory, *secrets.Vault) {
	t.Helper()
	factory := newMemFactory()
	vault, err := secrets.NewVault("test-master-key")
	require.NoError(t, err)
	svc := NewPluginService(factory, vault, nopLogger{}).(*pluginService)
	return svc, factory, vault
}

func TestUpsertSecretRejectsUnknownService(t *testing.T) {
	svc, _, _ := newPluginFixture(t)

	_, err := svc.UpsertSecret(context.Background(), "org-1", "stripe", map[string]interface{}{"key": "sk"})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
}

func TestUpsertSecretSealsPayload(t *testing.T) {
	svc, factory, vault := newPluginFixture(t)

	res, err := svc.UpsertSecret(context.Background(), "org-1", "vapi", map[string]interface{}{
		"public_key":  "pk_123",
		"private_key": "sk_456",
	})
	require.NoError(t, err)
	assert.True(t, res.Stored)

	uow := factory.NewUnitOfWork(context.Background())
	credential, err := uow.PluginCredentialRepository().FindByOrgAndService(context.Background(), "org-1", "vapi")
	require.NoError(t, err)
	require.NotNil(t, credential)

	// The row carries only ciphertext; the payload round-trips through the vault.
	assert.NotContains(t, string(credential.SecretCiphertext), "sk_456")
	var payload map[string]interface{}
	require.NoError(t, vault.OpenJSON(credential.SecretCiphertext, &payload))
	assert.Equal(t, "sk_456", payload["private_key"])
}

func TestUpsertSecretRotates(t *testing.T) {
	svc, factory, vault := newPluginFixture(t)

	_, err := svc.UpsertSecret(context.Background(), "org-1", "vapi", map[string]interface{}{"key": "old"})
	require.NoError(t, err)
	_, err = svc.UpsertSecret(context.Background(), "org-1", "vapi", map[string]interface{}{"key": "new"})
	require.NoError(t, err)

	uow := factory.NewUnitOfWork(context.Background())
	credential, err := uow.PluginCredentialRepository().FindByOrgAndService(context.Background(), "org-1", "vapi")
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, vault.OpenJSON(credential.SecretCiphertext, &payload))
	assert.Equal(t, "new", payload["key"])
}

func TestGetOneReportsStoredFlagOnly(t *testing.T) {
	svc, _, _ := newPluginFixture(t)

	res, err := svc.GetOne(context.Background(), "org-1", "vapi")
	require.NoError(t, err)
	assert.False(t, res.Stored)

	_, err = svc.UpsertSecret(context.Background(), "org-1", "vapi", map[string]interface{}{"key": "k"})
	require.NoError(t, err)

	res, err = svc.GetOne(context.Background(), "org-1", "vapi")
	require.NoError(t, err)
	assert.True(t, res.Stored)

	// Another organization sees nothing.
	other, err := svc.GetOne(context.Background(), "org-2", "vapi")
	require.NoError(t, err)
	assert.False(t, other.Stored)
}

func TestRemoveCredential(t *testing.T) {
	svc, _, _ := newPluginFixture(t)

	err := svc.Remove(context.Background(), "org-1", "vapi")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)

	_, err = svc.UpsertSecret(context.Background(), "org-1", "vapi", map[string]interface{}{"key": "k"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), "org-1", "vapi"))

	res, err := svc.GetOne(context.Background(), "org-1", "vapi")
	require.NoError(t, err)
	assert.False(t, res.Stored)
}
