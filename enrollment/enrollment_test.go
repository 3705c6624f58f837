package enrollment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnkit/learnkit-go/client"
	"github.com/learnkit/learnkit-go/enrollment"
	fakesessionstore "github.com/learnkit/learnkit-go/session/storefakes"
)

func newEnrollments(t *testing.T, baseURL string) *enrollment.Client {
	t.Helper()
	api := client.New(baseURL, fakesessionstore.NewFakeStore())
	return enrollment.New(api, enrollment.WithFallbackDelay(0))
}

func TestList_BackendResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/enrollments", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []enrollment.Enrollment{{ID: "e1", CourseID: "c1", Progress: 40}},
		})
	}))
	defer srv.Close()

	items, err := newEnrollments(t, srv.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 40, items[0].Progress)
}

func TestList_BackendDownServesSyntheticEnrollments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newEnrollments(t, srv.URL)
	first, err := c.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := c.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnroll_BackendDownSynthesizesEnrollment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e, err := newEnrollments(t, srv.URL).Enroll(context.Background(), "course-42")
	require.NoError(t, err)
	require.Equal(t, "course-42", e.CourseID)
	require.Equal(t, enrollment.Synthetic("course-42").ID, e.ID)
}
