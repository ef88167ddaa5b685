package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type SessionClient struct {
	httpClient *HttpClient
}

// List returns the live sessions for an activity on one date. Each session
// exposes its remaining capacity so slots derived from it need no local
// booking arithmetic.
func (c *SessionClient) List(ctx context.Context, activityID, date string) ([]model.Session, error) {
	q := url.Values{}
	q.Set("activity_id", activityID)
	q.Set("date", date)

	resp, err := c.httpClient.GET(ctx, "/api/v1/sessions?"+q.Encode())
	if err != nil {
		return nil, apperrors.Network("failed to fetch sessions", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Network(fmt.Sprintf("session list returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data []model.Session `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode session list", err)
	}
	return wrapper.Data, nil
}
