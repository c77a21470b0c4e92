package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"salesight/internal/config"
)

// NetSuiteSource fetches opportunity records from an account-scoped restlet
// endpoint, signing every request with OAuth1 HMAC-SHA256 and a realm equal
// to the account identifier.
type NetSuiteSource struct {
	url    string
	client *http.Client
}

// NewNetSuite builds a source whose HTTP client signs requests with the
// configured token/secret pair.
func NewNetSuite(cfg config.NetSuiteConfig) *NetSuiteSource {
	oaCfg := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	oaCfg.Realm = cfg.AccountID
	oaCfg.Signer = &oauth1.HMAC256Signer{ConsumerSecret: cfg.ConsumerSecret}
	token := oauth1.NewToken(cfg.TokenID, cfg.TokenSecret)

	client := oaCfg.Client(oauth1.NoContext, token)
	client.Timeout = 60 * time.Second

	url := cfg.BaseURL
	if url == "" {
		url = fmt.Sprintf(
			"https://%s.restlets.api.netsuite.com/app/site/hosting/restlet.nl?script=%s&deploy=%s",
			cfg.AccountID, cfg.ScriptID, cfg.DeployID,
		)
	}

	return &NetSuiteSource{url: url, client: client}
}

// Fetch performs the authenticated GET and decodes the record list. The
// body is either a JSON object (values taken as records) or a JSON array.
func (n *NetSuiteSource) Fetch(ctx context.Context) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netsuite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return decodeRecords(body)
}

func decodeRecords(body []byte) ([]map[string]any, error) {
	var asList []map[string]any
	if err := json.Unmarshal(body, &asList); err == nil {
		return asList, nil
	}

	var asMap map[string]any
	if err := json.Unmarshal(body, &asMap); err != nil {
		return nil, fmt.Errorf("unexpected response body: %w", err)
	}

	records := make([]map[string]any, 0, len(asMap))
	for _, v := range asMap {
		if rec, ok := v.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}
