package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"steamcollect/pkg/logger"
)

func newTestTags(server *httptest.Server) *Tags {
	client := NewClient(5*time.Second, nil, 1, logger.NewNopLogger())
	tags := NewTags(client, logger.NewNopLogger())
	tags.SetBaseURL(server.URL)
	return tags
}

func TestTagsExtraction(t *testing.T) {
	page := `<html><body>
		<div class="glance_tags popular_tags">
			<a href="#">Puzzle</a>
			<a href="#">  Co-op  </a>
			<a href="#">Sci-fi</a>
			<a href="#"></a>
		</div>
		<div class="other_tags"><a href="#">Ignored</a></div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app/620/", r.URL.Path)
		w.Write([]byte(page))
	}))
	defer server.Close()

	tags := newTestTags(server).Tags(context.Background(), 620)
	assert.Equal(t, []string{"Puzzle", "Co-op", "Sci-fi"}, tags)
}

func TestTagsMissingRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="page_content">no tags here</div></body></html>`))
	}))
	defer server.Close()

	assert.Empty(t, newTestTags(server).Tags(context.Background(), 620))
}

func TestTagsFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.Empty(t, newTestTags(server).Tags(context.Background(), 620))
}
