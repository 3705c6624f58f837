package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/learnkit/learnkit-go/session"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := session.NewMemoryStore()

	for _, key := range []string{session.KeyAccessToken, session.KeyRefreshToken, session.KeyRole} {
		t.Run(key, func(t *testing.T) {
			_, ok := s.Get(key)
			require.False(t, ok)

			s.Set(key, "value-"+key)
			v, ok := s.Get(key)
			require.True(t, ok)
			require.Equal(t, "value-"+key, v)

			s.Clear(key)
			_, ok = s.Get(key)
			require.False(t, ok)
		})
	}
}

func TestTokenPair_WrittenAndClearedAsPair(t *testing.T) {
	pair := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: session.TokenTypeBearer}

	t.Run("set then get", func(t *testing.T) {
		s := session.NewMemoryStore()
		session.SetTokenPair(s, pair)

		got, ok := session.TokenPair(s)
		require.True(t, ok)
		require.Equal(t, "access", got.AccessToken)
		require.Equal(t, "refresh", got.RefreshToken)
		require.Equal(t, session.TokenTypeBearer, got.TokenType)
		require.True(t, session.HasSession(s))
	})

	t.Run("clear removes both", func(t *testing.T) {
		s := session.NewMemoryStore()
		session.SetTokenPair(s, pair)
		session.ClearTokenPair(s)

		_, okAccess := s.Get(session.KeyAccessToken)
		_, okRefresh := s.Get(session.KeyRefreshToken)
		require.False(t, okAccess)
		require.False(t, okRefresh)
		require.False(t, session.HasSession(s))
	})

	t.Run("half a pair is never stored", func(t *testing.T) {
		s := session.NewMemoryStore()
		session.SetTokenPair(s, pair)
		session.SetTokenPair(s, &oauth2.Token{AccessToken: "only-access"})

		require.False(t, session.HasSession(s))
		_, ok := s.Get(session.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("nil pair clears", func(t *testing.T) {
		s := session.NewMemoryStore()
		session.SetTokenPair(s, pair)
		session.SetTokenPair(s, nil)
		require.False(t, session.HasSession(s))
	})

	t.Run("missing half means no session", func(t *testing.T) {
		s := session.NewMemoryStore()
		s.Set(session.KeyAccessToken, "orphan")
		_, ok := session.TokenPair(s)
		require.False(t, ok)
	})
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	fs, err := session.OpenFileStore(path)
	require.NoError(t, err)
	fs.Set(session.KeyAccessToken, "access")
	fs.Set(session.KeyRefreshToken, "refresh")
	fs.Set(session.KeyRole, "admin")

	reopened, err := session.OpenFileStore(path)
	require.NoError(t, err)
	require.True(t, session.HasSession(reopened))
	require.Equal(t, "admin", session.Role(reopened))

	reopened.Clear(session.KeyAccessToken, session.KeyRefreshToken, session.KeyRole)
	again, err := session.OpenFileStore(path)
	require.NoError(t, err)
	require.False(t, session.HasSession(again))
	require.Equal(t, "", session.Role(again))
}

func TestOpenFileStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.OpenFileStore(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed session file")
}
