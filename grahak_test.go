package grahak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyapari/grahak/config"
	"github.com/vyapari/grahak/convo"
)

func TestNewFromDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	eng, err := New(cfg)
	require.NoError(t, err)
	defer eng.Close()

	ctx := context.Background()
	const conv = "conv-1"

	created, err := eng.Resolver.CreateCustomerFast(ctx, "Rahul Sharma", conv)
	require.NoError(t, err)
	require.False(t, created.DuplicateFound)
	require.NotNil(t, created.Customer)

	out, err := eng.Resolver.SearchWithContext(ctx, "राहुल", conv)
	require.NoError(t, err)
	require.Len(t, out.Customers, 1)
	assert.Equal(t, created.Customer.ID, out.Customers[0].ID)
	assert.Equal(t, convo.SourceCache, out.Source)

	active, err := eng.Resolver.GetActiveCustomer(ctx, conv)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Rahul Sharma", active.Name)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Match.Threshold = 1.5

	_, err = New(cfg)
	require.Error(t, err)
}

func TestNewBadNicknamePath(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Nicknames.Path = "testdata/does-not-exist.toml"

	_, err = New(cfg)
	require.Error(t, err)
}
