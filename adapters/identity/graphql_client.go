// Package identity implements the Directory port against the GraphQL
// backend that owns user records.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// users.account_id carries a unique constraint; the empty update_columns
// list makes conflicting upserts return the existing row untouched.
const upsertUserMutation = `mutation UpsertUser($accountId: String!) {
  insert_users_one(
    object: {account_id: $accountId}
    on_conflict: {constraint: users_account_id_key, update_columns: []}
  ) {
    id
  }
}`

// GraphQLDirectory upserts users through a GraphQL mutation
type GraphQLDirectory struct {
	endpoint    string
	adminSecret string
	httpClient  *http.Client
}

// NewGraphQLDirectory creates a new GraphQL-backed user directory
func NewGraphQLDirectory(endpoint, adminSecret string) *GraphQLDirectory {
	return &GraphQLDirectory{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type upsertUserResponse struct {
	Data *struct {
		InsertUsersOne *struct {
			ID string `json:"id"`
		} `json:"insert_users_one"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// UpsertUser resolves the stable user id for a wallet account, creating the
// user on first sight. The mutation is idempotent: repeated calls for the
// same account return the same id.
func (d *GraphQLDirectory) UpsertUser(ctx context.Context, accountID string) (string, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     upsertUserMutation,
		Variables: map[string]any{"accountId": accountID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode upsert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", d.adminSecret)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("user upsert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user upsert returned status %d", resp.StatusCode)
	}

	var parsed upsertUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode upsert response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return "", fmt.Errorf("user upsert rejected: %s", parsed.Errors[0].Message)
	}
	if parsed.Data == nil || parsed.Data.InsertUsersOne == nil || parsed.Data.InsertUsersOne.ID == "" {
		return "", fmt.Errorf("user upsert returned no user id")
	}

	return parsed.Data.InsertUsersOne.ID, nil
}
