package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/internal/utils"
	"github.com/learnkit/learnkit-go/profile"
	fakesessionstore "github.com/learnkit/learnkit-go/session/storefakes"
)

func newProfiles(t *testing.T, baseURL string) *profile.Client {
	t.Helper()
	api := client.New(baseURL, fakesessionstore.NewFakeStore())
	return profile.New(api, profile.WithFallbackDelay(0))
}

func TestGet_BackendResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		_ = json.NewEncoder(w).Encode(profile.Profile{ID: "user-1", Email: "a@b.com", Nickname: "a", Role: "student"})
	}))
	defer srv.Close()

	p, err := newProfiles(t, srv.URL).Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a@b.com", p.Email)
}

func TestGet_BackendDownServesSyntheticProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p, err := newProfiles(t, srv.URL).Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, profile.DemoEmail, p.Email)
	require.Equal(t, profile.Synthetic(profile.DemoEmail), p)
}

func TestUpdate_BackendDownAppliesPatchToSyntheticProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p, err := newProfiles(t, srv.URL).Update(context.Background(), profile.Patch{
		Nickname: utils.Ptr("new-nick"),
	})
	require.NoError(t, err)
	require.Equal(t, "new-nick", p.Nickname)
	require.Equal(t, profile.DemoEmail, p.Email)
}

func TestSynthetic_Deterministic(t *testing.T) {
	a := profile.Synthetic("a@b.com")
	b := profile.Synthetic("a@b.com")
	require.Equal(t, a, b)
	require.Equal(t, "a", a.Nickname)
	require.NotEqual(t, a.ID, profile.Synthetic("c@d.com").ID)
}
