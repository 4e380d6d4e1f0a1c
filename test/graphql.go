//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type gqlError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []gqlError             `json:"errors"`
}

func (r *gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

func healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status: %d", resp.StatusCode)
	}
	return nil
}

func doGraphQL(
	ctx context.Context,
	t *testing.T,
	token string,
	query string,
	variables map[string]interface{},
) *gqlResponse {
	t.Helper()

	reqJson, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+"/graphql", bytes.NewBuffer(reqJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	gqlResp := &gqlResponse{}
	require.NoError(t, json.Unmarshal(respBytes, gqlResp), string(respBytes))
	return gqlResp
}

// registerAndLogin creates a user and returns a session token for it.
func registerAndLogin(ctx context.Context, t *testing.T, username, password string) string {
	t.Helper()

	resp := doGraphQL(ctx, t, "", `mutation($u: String!, $p: String!) {
		createUser(username: $u, password: $p) { success }
	}`, map[string]interface{}{"u": username, "p": password})
	require.Empty(t, resp.Errors)

	resp = doGraphQL(ctx, t, "", `mutation($u: String!, $p: String!) {
		tokenAuth(username: $u, password: $p) { token }
	}`, map[string]interface{}{"u": username, "p": password})
	require.Empty(t, resp.Errors)

	token, ok := dig(resp.Data, "tokenAuth", "token").(string)
	require.True(t, ok)
	return token
}

func dig(data map[string]interface{}, path ...string) interface{} {
	var cur interface{} = data
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}
