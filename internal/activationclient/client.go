// Package activationclient implements ActivationClient (C1): the single
// blocking HTTP call into the serverless backend that invokes a resolved
// system action and classifies its response.
package activationclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metrics"
)

// Client invokes backend actions over HTTP, blocking for the full
// activation result (?blocking=true).
type Client struct {
	httpClient *http.Client
	hostBase   string
	apiVersion string
}

// New returns a Client targeting hostBase (e.g. "https://backend.example.com")
// using apiVersion (e.g. "v1") in the upstream action URL.
func New(httpClient *http.Client, hostBase, apiVersion string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, hostBase: hostBase, apiVersion: apiVersion}
}

// Invoke calls POST <hostBase>/api/<v>/namespaces/<target.Namespace>/actions/[<target.Package>/]<target.Name>?blocking=true
// with HTTP Basic credentials from identity and the merged parameters as a
// JSON body, then classifies the response into an ActivationOutcome.
// identity supplies only the credentials presented to the backend; target
// names the action invoked, which may live in a namespace other than
// identity's own (rule fan-out invokes actions named by the fired
// trigger's rules, not necessarily the caller's own namespace). There are
// no retries: the backend action is not assumed idempotent.
func (c *Client) Invoke(ctx context.Context, identity metamodel.Identity, target metamodel.EntityPath, body *metamodel.OrderedObject) (metamodel.ActivationOutcome, error) {
	started := time.Now()
	outcome, err := c.invoke(ctx, identity, target, body)
	if err == nil {
		metrics.RecordActivationClientInvoke(string(outcome.Kind), time.Since(started))
	}
	return outcome, err
}

func (c *Client) invoke(ctx context.Context, identity metamodel.Identity, target metamodel.EntityPath, body *metamodel.OrderedObject) (metamodel.ActivationOutcome, error) {
	payload, err := body.MarshalOrderedJSON()
	if err != nil {
		return metamodel.ActivationOutcome{}, fmt.Errorf("activationclient: marshal body: %w", err)
	}

	actionPath := target.Name
	if target.Package != "" {
		actionPath = target.Package + "/" + target.Name
	}
	url := fmt.Sprintf("%s/api/%s/namespaces/%s/actions/%s?blocking=true",
		c.hostBase, c.apiVersion, target.Namespace, actionPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return metamodel.ActivationOutcome{}, fmt.Errorf("activationclient: build request: %w", err)
	}
	req.SetBasicAuth(identity.AuthKey.UUID, identity.AuthKey.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return metamodel.Failure(0, fmt.Sprintf("backend transport error: %v", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return metamodel.Failure(0, fmt.Sprintf("backend transport error reading response: %v", err)), nil
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var record map[string]any
		if err := json.Unmarshal(respBody, &record); err != nil {
			return metamodel.Failure(resp.StatusCode, fmt.Sprintf("backend returned non-JSON 200 response: %v", err)), nil
		}
		return metamodel.Success(record), nil

	case http.StatusAccepted:
		var accepted struct {
			ActivationID string `json:"activationId"`
		}
		if err := json.Unmarshal(respBody, &accepted); err != nil || accepted.ActivationID == "" {
			return metamodel.Failure(resp.StatusCode, "backend returned 202 without an activationId"), nil
		}
		return metamodel.Pending(accepted.ActivationID), nil

	default:
		var asObject map[string]any
		if err := json.Unmarshal(respBody, &asObject); err == nil {
			if msg, ok := asObject["error"].(string); ok {
				return metamodel.Failure(resp.StatusCode, msg), nil
			}
		}
		return metamodel.Failure(resp.StatusCode, string(respBody)), nil
	}
}
