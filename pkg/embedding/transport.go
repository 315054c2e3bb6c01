package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// postJSON sends payload and returns the raw response. Only transport level
// failures are errors here; status handling belongs to the caller.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &Error{Kind: KindMalformed, Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindTransport, Message: "failed to read response", Err: err}
	}
	return resp.StatusCode, raw, nil
}
