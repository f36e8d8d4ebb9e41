package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamcollect/pkg/logger"
)

// detailsServer serves canned detail and review payloads keyed by app id
func detailsServer(t *testing.T, details map[int]string, reviewCounts map[int]int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(AppDetailsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		appID := r.URL.Query().Get("appids")
		for id, body := range details {
			if appID == fmt.Sprintf("%d", id) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"%d": %s}`, id, body)
				return
			}
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc(AppReviewsEndpoint+"/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, AppReviewsEndpoint+"/")
		for appID, count := range reviewCounts {
			if id == fmt.Sprintf("%d", appID) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"success": 1, "query_summary": {"total_reviews": %d}}`, count)
				return
			}
		}
		http.NotFound(w, r)
	})

	return httptest.NewServer(mux)
}

func newTestDetails(server *httptest.Server, minReviews int) *Details {
	client := NewClient(5*time.Second, nil, 1, logger.NewNopLogger())
	reviews := NewReviews(client, logger.NewNopLogger())
	reviews.SetBaseURL(server.URL)
	details := NewDetails(client, reviews, "us", "english", minReviews, logger.NewNopLogger())
	details.SetBaseURL(server.URL)
	return details
}

const fullGamePayload = `{
	"success": true,
	"data": {
		"type": "game",
		"name": "Portal 2",
		"developers": ["Valve"],
		"publishers": ["Valve"],
		"short_description": "A puzzle game.",
		"detailed_description": "A longer puzzle game description.",
		"release_date": {"coming_soon": false, "date": "19 Apr, 2011"},
		"categories": [{"id": 2, "description": "Single-player"}],
		"genres": [{"id": "1", "description": "Action"}, {"id": "25", "description": "Adventure"}],
		"price_overview": {"currency": "USD", "final_formatted": "$9.99"},
		"metacritic": {"score": 95, "url": "https://example.com"},
		"pc_requirements": {"minimum": "Windows 7"}
	}
}`

func TestDetailsFetchFullGame(t *testing.T) {
	server := detailsServer(t,
		map[int]string{620: fullGamePayload},
		map[int]int{620: 150000},
	)
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 620)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 620, rec.AppID)
	assert.Equal(t, "Portal 2", rec.Name)
	assert.Equal(t, "Valve", rec.Developer)
	assert.Equal(t, "Valve", rec.Publisher)
	assert.Equal(t, "$9.99", rec.Price)
	assert.Equal(t, "Windows 7", rec.MinimumRequirements)
	assert.Equal(t, 150000, rec.ReviewCount)
	assert.Equal(t, []string{"Action", "Adventure"}, rec.Genres)

	require.NotNil(t, rec.ReleaseDate)
	assert.Equal(t, 2011, rec.ReleaseDate.Year())
	assert.Equal(t, time.April, rec.ReleaseDate.Month())
	assert.Equal(t, 19, rec.ReleaseDate.Day())

	require.NotNil(t, rec.MetacriticScore)
	assert.Equal(t, 95, *rec.MetacriticScore)
}

func TestDetailsFetchRejectsNonGame(t *testing.T) {
	payload := `{
		"success": true,
		"data": {
			"type": "demo",
			"name": "Some Demo",
			"release_date": {"date": ""},
			"pc_requirements": []
		}
	}`
	server := detailsServer(t, map[int]string{100: payload}, nil)
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDetailsFetchRejectsDLC(t *testing.T) {
	// DLC typed as "game" must still be rejected via the category marker
	payload := `{
		"success": true,
		"data": {
			"type": "game",
			"name": "Expansion Pack",
			"categories": [{"id": 2}, {"id": 21}],
			"release_date": {"date": ""},
			"pc_requirements": []
		}
	}`
	server := detailsServer(t, map[int]string{200: payload}, map[int]int{200: 50000})
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 200)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDetailsFetchReviewThreshold(t *testing.T) {
	payload := `{
		"success": true,
		"data": {
			"type": "game",
			"name": "Borderline Game",
			"release_date": {"date": ""},
			"pc_requirements": []
		}
	}`

	tests := []struct {
		name     string
		count    int
		accepted bool
	}{
		{"exactly at threshold", 1000, true},
		{"one below threshold", 999, false},
		{"zero reviews", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := detailsServer(t, map[int]string{300: payload}, map[int]int{300: tt.count})
			defer server.Close()

			details := newTestDetails(server, 1000)

			rec, err := details.Fetch(context.Background(), 300)
			require.NoError(t, err)
			if tt.accepted {
				require.NotNil(t, rec)
				assert.Equal(t, tt.count, rec.ReviewCount)
			} else {
				assert.Nil(t, rec)
			}
		})
	}
}

func TestDetailsFetchUnsuccessfulPayload(t *testing.T) {
	server := detailsServer(t, map[int]string{400: `{"success": false}`}, nil)
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 400)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDetailsFetchServerErrorSkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 500)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDetailsFetchDefaultsForSparsePayload(t *testing.T) {
	// Missing developers, publishers, price, metacritic, and an empty-array
	// requirements block should all fall back rather than fail
	payload := `{
		"success": true,
		"data": {
			"type": "game",
			"name": "Sparse Game",
			"release_date": {"date": "Coming soon"},
			"pc_requirements": []
		}
	}`
	server := detailsServer(t, map[int]string{600: payload}, map[int]int{600: 2000})
	defer server.Close()

	details := newTestDetails(server, 1000)

	rec, err := details.Fetch(context.Background(), 600)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "N/A", rec.Developer)
	assert.Equal(t, "N/A", rec.Publisher)
	assert.Equal(t, "Free", rec.Price)
	assert.Equal(t, "N/A", rec.MinimumRequirements)
	assert.Nil(t, rec.MetacriticScore)
	assert.Nil(t, rec.ReleaseDate, "unparseable date should not block acceptance")
	assert.Empty(t, rec.Genres)
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"19 Apr, 2011", true},
		{"1 Jan, 2020", true},
		{"Coming soon", false},
		{"Q4 2026", false},
		{"", false},
	}

	for _, tt := range tests {
		got := parseReleaseDate(tt.raw)
		if tt.want {
			assert.NotNil(t, got, "expected %q to parse", tt.raw)
		} else {
			assert.Nil(t, got, "expected %q not to parse", tt.raw)
		}
	}
}
