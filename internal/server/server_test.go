package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetflow/internal/models"
	"github.com/spacesedan/tweetflow/internal/store"
)

func seededServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "dash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := time.Date(2009, 4, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertBatch(context.Background(), []models.StoredTweet{
		{ID: "1", Text: "great day", Label: models.LabelPositive, Score: 0.9, ProcessedAt: now},
		{ID: "2", Text: "awful day", Label: models.LabelNegative, Score: 0.8, ProcessedAt: now.Add(time.Minute)},
		{ID: "3", Text: "some day", Label: models.LabelNeutral, Score: 0.7, ProcessedAt: now.Add(time.Hour)},
	}))

	return New(st)
}

func doGET(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doGET(t, seededServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var counts []store.LabelCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, []store.LabelCount{
		{Label: models.LabelPositive, Count: 1},
		{Label: models.LabelNegative, Count: 1},
		{Label: models.LabelNeutral, Count: 1},
	}, counts)
}

func TestTrendEndpoint(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/trend")
	require.Equal(t, http.StatusOK, rec.Code)

	var buckets []store.BucketCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buckets))
	assert.Equal(t, []store.BucketCount{
		{Bucket: "2009-04-06 10:00", Count: 2},
		{Bucket: "2009-04-06 11:00", Count: 1},
	}, buckets)
}

func TestTweetsEndpointFiltersByLabel(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/tweets?label=positive")
	require.Equal(t, http.StatusOK, rec.Code)

	var tweets []models.StoredTweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tweets))
	require.Len(t, tweets, 1)
	assert.Equal(t, "1", tweets[0].ID)
}

func TestTweetsEndpointKeywordFilter(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/tweets?q=great")
	require.Equal(t, http.StatusOK, rec.Code)

	var tweets []models.StoredTweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tweets))
	require.Len(t, tweets, 1)
	assert.Equal(t, "1", tweets[0].ID)

	rec = doGET(t, seededServer(t), "/api/tweets?label=negative&q=day")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tweets))
	require.Len(t, tweets, 1)
	assert.Equal(t, "2", tweets[0].ID)
}

func TestTweetsEndpointRejectsUnknownLabel(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/tweets?label=angry")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTweetsEndpointNoFilter(t *testing.T) {
	rec := doGET(t, seededServer(t), "/api/tweets")
	require.Equal(t, http.StatusOK, rec.Code)

	var tweets []models.StoredTweet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tweets))
	assert.Len(t, tweets, 3)
}
