package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	payloads := [][]byte{
		{},
		[]byte("secret123"),
		{0x00, 0xff, 0x00, '\n', 0x7f},
		[]byte(strings.Repeat("x", 1024)),
	}
	for i, p := range payloads {
		name := string(rune('a' + i))
		require.NoError(t, f.records.Create(ctx, s, name, p))
		got, err := f.records.Read(ctx, s, name)
		require.NoError(t, err)
		assert.Equal(t, len(p), len(got))
		if len(p) > 0 {
			assert.Equal(t, p, got)
		}
	}
}

func TestRecord_StoredCiphertextIsNotPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	require.NoError(t, f.records.Create(ctx, s, "email", []byte("secret123")))

	rec, err := f.repos.Records().Get(ctx, s.UserID, "email")
	require.NoError(t, err)
	assert.NotContains(t, string(rec.Ciphertext), "secret123")
	assert.NotEmpty(t, rec.Nonce)
}

func TestRecord_TamperDetection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	require.NoError(t, f.records.Create(ctx, s, "email", []byte("secret123")))
	orig, err := f.repos.Records().Get(ctx, s.UserID, "email")
	require.NoError(t, err)

	for bit := 0; bit < len(orig.Ciphertext)*8; bit += 7 {
		rec := *orig
		rec.Ciphertext = append([]byte(nil), orig.Ciphertext...)
		rec.Ciphertext[bit/8] ^= 1 << (bit % 8)
		require.NoError(t, f.repos.Records().Update(ctx, &rec))

		_, err := f.records.Read(ctx, s, "email")
		require.ErrorIs(t, err, common.ErrDecrypt, "bit %d", bit)
	}
}

func TestRecord_BlobMovedBetweenNamesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	require.NoError(t, f.records.Create(ctx, s, "a", []byte("one")))
	require.NoError(t, f.records.Create(ctx, s, "b", []byte("two")))

	a, err := f.repos.Records().Get(ctx, s.UserID, "a")
	require.NoError(t, err)
	a.Name = "b"
	require.NoError(t, f.repos.Records().Update(ctx, a))

	_, err = f.records.Read(ctx, s, "b")
	require.ErrorIs(t, err, common.ErrDecrypt)
}

func TestRecord_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	require.NoError(t, f.records.Create(ctx, s, "email", []byte("v1")))
	require.ErrorIs(t, f.records.Create(ctx, s, "email", []byte("v2")), common.ErrDuplicateName)

	got, err := f.records.Read(ctx, s, "email")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, f.records.Update(ctx, s, "email", []byte("v2")))
	got, err = f.records.Read(ctx, s, "email")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.ErrorIs(t, f.records.Update(ctx, s, "missing", []byte("x")), common.ErrNotFound)
	_, err = f.records.Read(ctx, s, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.records.Delete(ctx, s, "email"))
	require.ErrorIs(t, f.records.Delete(ctx, s, "email"), common.ErrNotFound)
	_, err = f.records.Read(ctx, s, "email")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecord_ListOrderedAndFresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	names, err := f.records.List(ctx, s)
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	for _, n := range []string{"zeta", "Alpha", "beta", "Ünïcode"} {
		require.NoError(t, f.records.Create(ctx, s, n, []byte(n)))
	}

	names, err = f.records.List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "zeta", "Ünïcode"}, names)

	require.NoError(t, f.records.Delete(ctx, s, "beta"))
	names, err = f.records.List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "zeta", "Ünïcode"}, names)
}

func TestRecord_IsolationBetweenUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.login(t, "alice", "pw")
	bob := f.login(t, "bob", "pw")

	require.NoError(t, f.records.Create(ctx, alice, "email", []byte("alice-secret")))
	require.NoError(t, f.records.Create(ctx, alice, "bank", []byte("alice-bank")))

	names, err := f.records.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = f.records.Read(ctx, bob, "email")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, f.records.Delete(ctx, bob, "email"), common.ErrNotFound)

	// same name in another collection is not a duplicate
	require.NoError(t, f.records.Create(ctx, bob, "email", []byte("bob-secret")))
	got, err := f.records.Read(ctx, alice, "email")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice-secret"), got)
}

func TestRecord_Unauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")
	require.NoError(t, f.records.Create(ctx, s, "email", []byte("v1")))

	var none *sessions.Session
	require.ErrorIs(t, f.records.Create(ctx, none, "x", []byte("v")), common.ErrUnauthorized)
	_, err := f.records.Read(ctx, none, "email")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = f.records.List(ctx, none)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	f.sessions.End(ctx, s)

	require.ErrorIs(t, f.records.Create(ctx, s, "new", []byte("v")), common.ErrUnauthorized)
	require.ErrorIs(t, f.records.Update(ctx, s, "email", []byte("v2")), common.ErrUnauthorized)
	require.ErrorIs(t, f.records.Delete(ctx, s, "email"), common.ErrUnauthorized)
	_, err = f.records.Read(ctx, s, "email")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// nothing changed
	s2 := f.login(t, "alice", "pw")
	names, err := f.records.List(ctx, s2)
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, names)
	got, err := f.records.Read(ctx, s2, "email")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestRecord_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "alice", "pw")

	require.ErrorIs(t, f.records.Create(ctx, s, "", []byte("v")), common.ErrInvalidRecordName)
	require.ErrorIs(t, f.records.Create(ctx, s, "tab\tname", []byte("v")), common.ErrInvalidRecordName)
	require.ErrorIs(t, f.records.Create(ctx, s, "ok", make([]byte, 1025)), common.ErrInvalidArgument)
	require.ErrorIs(t, f.records.Update(ctx, s, "ok", make([]byte, 1025)), common.ErrInvalidArgument)
}

func TestRecord_ConcurrentUpdatesSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.login(t, "alice", "pw")
	s2 := f.login(t, "alice", "pw")

	require.NoError(t, f.records.Create(ctx, s1, "counter", []byte("0")))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		s := s1
		if i%2 == 1 {
			s = s2
		}
		wg.Add(1)
		go func(s *sessions.Session, v byte) {
			defer wg.Done()
			assert.NoError(t, f.records.Update(ctx, s, "counter", []byte{v}))
		}(s, byte('a'+i))
	}
	wg.Wait()

	got, err := f.records.Read(ctx, s1, "counter")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0] >= 'a' && got[0] < 'a'+20)
}
