package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesight/internal/config"
)

func testConfig(url string) config.NetSuiteConfig {
	return config.NetSuiteConfig{
		AccountID:      "123456",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		TokenID:        "tid",
		TokenSecret:    "ts",
		ScriptID:       "128",
		DeployID:       "1",
		BaseURL:        url,
	}
}

func TestFetchDecodesArrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"idOportunidad":"1","empresa":"Acme"}]`))
	}))
	defer srv.Close()

	records, err := NewNetSuite(testConfig(srv.URL)).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0]["empresa"])
}

func TestFetchDecodesMapBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":{"idOportunidad":"1"},"b":{"idOportunidad":"2"}}`))
	}))
	defer srv.Close()

	records, err := NewNetSuite(testConfig(srv.URL)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewNetSuite(testConfig(srv.URL)).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestFetchSignsRequests(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewNetSuite(testConfig(srv.URL)).Fetch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, auth, "OAuth")
	assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA256"`)
	assert.Contains(t, auth, `oauth_token="tid"`)
}

func TestDecodeRecordsRejectsScalars(t *testing.T) {
	_, err := decodeRecords([]byte(`"just a string"`))
	assert.Error(t, err)
}
