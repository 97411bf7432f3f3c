package hash

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{N: 1024, R: 8, P: 1, KeyLen: 64, SaltLen: 9}

func newTestScrypt(t *testing.T) *Scrypt {
	t.Helper()
	s, err := NewScrypt(testParams)
	require.NoError(t, err)
	return s
}

func TestScrypt_VerifyRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	for _, pw := range []string{"Password1!", "x", "пароль", strings.Repeat("long", 200)} {
		stored, err := s.Hash(pw)
		require.NoError(t, err)
		assert.True(t, s.Verify(pw, stored), pw)
	}
}

func TestScrypt_WrongSecretFails(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	stored, err := s.Hash("Password1!")
	require.NoError(t, err)

	assert.False(t, s.Verify("Password1", stored))
	assert.False(t, s.Verify("password1!", stored))
	assert.False(t, s.Verify("", stored))
}

func TestScrypt_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	a, err := s.Hash("same")
	require.NoError(t, err)
	b, err := s.Hash("same")
	require.NoError(t, err)

	saltA, _, _ := strings.Cut(a, separator)
	saltB, _, _ := strings.Cut(b, separator)
	assert.NotEqual(t, saltA, saltB)
	assert.NotEqual(t, a, b)
}

func TestScrypt_Format(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	stored, err := s.Hash("secret")
	require.NoError(t, err)

	parts := strings.Split(stored, separator)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], testParams.SaltLen*2)
	assert.Len(t, parts[1], testParams.KeyLen*2)
}

func TestScrypt_MalformedStoredFailsClosed(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	tests := []string{
		"",
		".",
		"nosep",
		"zz.abcd",
		"abcd.zz",
		"abcd.",
		".abcd",
		"a.b.c",
	}
	for _, stored := range tests {
		assert.False(t, s.Verify("secret", stored), stored)
	}
}

func TestScrypt_EmptySecretRejected(t *testing.T) {
	t.Parallel()
	s := newTestScrypt(t)

	_, err := s.Hash("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestNewScrypt_BadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Params
	}{
		{name: "short salt", p: Params{N: 1024, R: 8, P: 1, KeyLen: 64, SaltLen: 4}},
		{name: "short key", p: Params{N: 1024, R: 8, P: 1, KeyLen: 8, SaltLen: 9}},
		{name: "N not power of two", p: Params{N: 1000, R: 8, P: 1, KeyLen: 64, SaltLen: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScrypt(tt.p)
			assert.Error(t, err)
		})
	}
}

func TestPool_HashAndVerify(t *testing.T) {
	t.Parallel()
	p := NewPool(newTestScrypt(t), 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, err := p.Hash(ctx, "Password1!")
			assert.NoError(t, err)
			assert.True(t, p.Verify(ctx, "Password1!", stored))
		}()
	}
	wg.Wait()
}

func TestPool_CancelledWhileWaiting(t *testing.T) {
	t.Parallel()
	p := NewPool(newTestScrypt(t), 1)

	stored, err := p.Hash(context.Background(), "secret")
	require.NoError(t, err)

	require.NoError(t, p.sem.Acquire(context.Background(), 1))
	defer p.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Hash(ctx, "secret")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, p.Verify(ctx, "secret", stored))
}
