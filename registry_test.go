package statetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	b := newFakeBackend()

	class, err := reg.Register(b, "Button", func(o *Object) Node { return o })
	require.NoError(t, err)
	assert.Equal(t, "Button", class.Name())
	assert.False(t, class.Generic())

	t.Run("duplicate name is an error", func(t *testing.T) {
		_, err := reg.Register(b, "Button", func(o *Object) Node { return o })
		require.Error(t, err)
	})

	t.Run("nil backend is an error", func(t *testing.T) {
		_, err := reg.Register(nil, "Dialog", func(o *Object) Node { return o })
		require.Error(t, err)
	})

	t.Run("empty name is an error", func(t *testing.T) {
		_, err := reg.Register(b, "", func(o *Object) Node { return o })
		require.Error(t, err)
	})
}

func TestRegistryResolveSynthesizesGenericFallback(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	b := newFakeBackend()

	class := reg.Resolve(b, "Mystery")
	require.NotNil(t, class)
	assert.True(t, class.Generic())
	assert.Equal(t, "Mystery", class.Name())

	// The fallback is cached: resolving again hands back the same class, so
	// selector matching by identity keeps working.
	assert.Same(t, class, reg.Resolve(b, "Mystery"))
}

func TestRegistryRegisterReplacesGenericFallback(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	b := newFakeBackend()

	generic := reg.Resolve(b, "Button")
	require.True(t, generic.Generic())

	// Registering after a generic was synthesized for the same name is not a
	// duplicate; the explicit class wins from here on.
	class, err := reg.Register(b, "Button", func(o *Object) Node { return o })
	require.NoError(t, err)
	assert.False(t, class.Generic())
	assert.Same(t, class, reg.Resolve(b, "Button"))
}

func TestRegistryClearIsScopedToOneBackend(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	appBackend := newFakeBackend()
	systemBackend := newFakeBackend()

	_, err := reg.Register(appBackend, "Button", func(o *Object) Node { return o })
	require.NoError(t, err)
	kept, err := reg.Register(systemBackend, "Button", func(o *Object) Node { return o })
	require.NoError(t, err)

	reg.Clear(appBackend)

	// The cleared backend's name is free again; the other backend's
	// registration survived untouched.
	_, err = reg.Register(appBackend, "Button", func(o *Object) Node { return o })
	require.NoError(t, err)
	assert.Same(t, kept, reg.Resolve(systemBackend, "Button"))
}
