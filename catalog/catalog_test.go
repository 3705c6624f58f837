package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnkit/learnkit-go/catalog"
	"github.com/learnkit/learnkit-go/client"
	fakesessionstore "github.com/learnkit/learnkit-go/session/storefakes"
)

func newCatalog(t *testing.T, baseURL string) *catalog.Client {
	t.Helper()
	api := client.New(baseURL, fakesessionstore.NewFakeStore())
	return catalog.New(api, catalog.WithFallbackDelay(0))
}

func TestList_BackendResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/courses", r.URL.Path)
		require.Equal(t, "design", r.URL.Query().Get("category"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []catalog.Course{{ID: "c1", Title: "Real Course", Category: "design"}},
			"total": 1,
		})
	}))
	defer srv.Close()

	courses, err := newCatalog(t, srv.URL).List(context.Background(), catalog.Query{Category: "design"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "Real Course", courses[0].Title)
}

func TestList_BackendDownServesSyntheticCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newCatalog(t, srv.URL)
	q := catalog.Query{Category: "programming", Level: "beginner"}

	first, err := c.List(context.Background(), q)
	require.NoError(t, err)
	require.NotEmpty(t, first, "the catalog always renders something")

	second, err := c.List(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, first, second, "fallback is a pure function of the query")

	for _, course := range first {
		require.Equal(t, "programming", course.Category)
		require.Equal(t, "beginner", course.Level)
	}
}

func TestList_EmptyBackendPayloadServesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []catalog.Course{}, "total": 0})
	}))
	defer srv.Close()

	courses, err := newCatalog(t, srv.URL).List(context.Background(), catalog.Query{})
	require.NoError(t, err)
	require.NotEmpty(t, courses, "an empty payload fails the shape check")
}

func TestSyntheticList_SortAndDeterminism(t *testing.T) {
	t.Run("sorted by price", func(t *testing.T) {
		courses := catalog.SyntheticList(catalog.Query{Sort: "price"})
		for i := 1; i < len(courses); i++ {
			require.LessOrEqual(t, courses[i-1].Price, courses[i].Price)
		}
	})

	t.Run("stable ids", func(t *testing.T) {
		a := catalog.SyntheticList(catalog.Query{Category: "design"})
		b := catalog.SyntheticList(catalog.Query{Category: "design"})
		require.Equal(t, a, b)
	})

	t.Run("different query different listing", func(t *testing.T) {
		a := catalog.SyntheticList(catalog.Query{Category: "design"})
		b := catalog.SyntheticList(catalog.Query{Category: "business"})
		require.NotEqual(t, a, b)
	})
}

func TestGet_BackendDownSynthesizesFromID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	course, err := newCatalog(t, srv.URL).Get(context.Background(), "course-42")
	require.NoError(t, err)
	require.Equal(t, "course-42", course.ID)
	require.NotEmpty(t, course.Title)
}
