package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type VenueClient struct {
	httpClient *HttpClient
}

type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
}

func (c *VenueClient) GetVenue(ctx context.Context, id string) (*Venue, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/venues/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.Network("failed to fetch venue", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFoundWithID("venue", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Network(fmt.Sprintf("venue lookup returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data Venue `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode venue response", err)
	}
	return &wrapper.Data, nil
}

// ListActivities fetches the venue's activities, optionally filtered to
// active ones only.
func (c *VenueClient) ListActivities(ctx context.Context, venueID string, activeOnly bool) ([]*model.Activity, error) {
	q := url.Values{}
	if activeOnly {
		q.Set("active", "true")
	}
	path := "/api/v1/venues/" + url.PathEscape(venueID) + "/activities"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, apperrors.Network("failed to fetch activities", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Network(fmt.Sprintf("activity list returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode activity list", err)
	}

	activities := make([]*model.Activity, 0, len(wrapper.Data))
	for _, raw := range wrapper.Data {
		var a model.Activity
		if err := json.Unmarshal(raw, &a); err == nil && a.ID != "" {
			activities = append(activities, &a)
		}
	}
	return activities, nil
}
