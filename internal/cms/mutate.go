package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Mutation is one entry of a mutate request, keyed by its operation name.
type Mutation map[string]any

func CreateOrReplace(doc map[string]any) Mutation {
	return Mutation{"createOrReplace": doc}
}

func CreateIfNotExists(doc map[string]any) Mutation {
	return Mutation{"createIfNotExists": doc}
}

func PatchSet(id string, set map[string]any) Mutation {
	return Mutation{"patch": map[string]any{"id": id, "set": set}}
}

func Delete(id string) Mutation {
	return Mutation{"delete": map[string]any{"id": id}}
}

type MutateResult struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Mutate applies mutations in one transaction. It needs an authenticated
// client; the public client never writes.
func (c *Client) Mutate(ctx context.Context, mutations ...Mutation) (*MutateResult, error) {
	if c.token == "" {
		return nil, ErrUnauthorized
	}
	if len(mutations) == 0 {
		return &MutateResult{}, nil
	}

	body, err := json.Marshal(struct {
		Mutations []Mutation `json:"mutations"`
	}{mutations})
	if err != nil {
		return nil, &Error{Op: "encode mutations", Err: err}
	}

	u := c.endpoint("mutate") + "?" + url.Values{"returnIds": {"true"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req, "mutate")
	if err != nil {
		return nil, err
	}

	var res MutateResult
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, &Error{Op: "decode mutate response", Err: err}
	}
	return &res, nil
}
