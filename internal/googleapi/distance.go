package googleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

const distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// DistanceClient quotes a delivery charge from road distance between two
// addresses via the Distance Matrix API.
type DistanceClient struct {
	APIKey    string
	RatePerKm int64
	BaseURL   string       // defaults to the Google endpoint
	HTTP      *http.Client // defaults to a 10s-timeout client
}

type Quote struct {
	DistanceKm     float64 `json:"distance"`
	DeliveryCharge int64   `json:"delivery_charge"`
}

type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *DistanceClient) Quote(ctx context.Context, origins, destinations string) (*Quote, error) {
	base := c.BaseURL
	if base == "" {
		base = distanceMatrixURL
	}
	q := url.Values{}
	q.Set("origins", origins)
	q.Set("destinations", destinations)
	q.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix: status %d", resp.StatusCode)
	}

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, err
	}
	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix: empty response")
	}
	el := mr.Rows[0].Elements[0]
	if el.Status != "OK" {
		return nil, fmt.Errorf("distance matrix: element status %s", el.Status)
	}

	km := float64(el.Distance.Value) / 1000
	return &Quote{
		DistanceKm:     km,
		DeliveryCharge: int64(math.Round(km * float64(c.RatePerKm))),
	}, nil
}
