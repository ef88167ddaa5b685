// Package client talks to the remote collaborator: the backend service that
// owns venues, live sessions, discount validation and reservation creation.
// Only the boundary contract is known here; the service itself is external
// to the widget core.
package client

import "time"

type Client struct {
	Venue    *VenueClient
	Sessions *SessionClient
	Discount *DiscountClient
	Checkout *CheckoutClient
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	hc := NewHttpClient(baseURL, timeout)
	return &Client{
		Venue:    &VenueClient{httpClient: hc},
		Sessions: &SessionClient{httpClient: hc},
		Discount: &DiscountClient{httpClient: hc},
		Checkout: &CheckoutClient{httpClient: hc},
	}
}
