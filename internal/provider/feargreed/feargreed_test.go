package feargreed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finfeed/internal/httpx"
)

func TestSentiment_DecodesIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Fear and Greed Index","data":[{"value":"54","value_classification":"Neutral","timestamp":"1756406400"}],"metadata":{"error":null}}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, httpx.New(5*time.Second))
	got, err := c.Sentiment(context.Background())
	require.NoError(t, err)
	require.Equal(t, "54", got.Score.String())
	require.Equal(t, "Neutral", got.Label)
	require.Equal(t, "feargreed", got.Source)
}

func TestSentiment_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"metadata":{"error":"rate limited"}}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, httpx.New(5*time.Second))
	_, err := c.Sentiment(context.Background())
	require.Error(t, err)
}

func TestSentiment_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"metadata":{"error":null}}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, httpx.New(5*time.Second))
	_, err := c.Sentiment(context.Background())
	require.Error(t, err)
}
