package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrUnavailable marks every failure of the prediction service: timeout,
// unreachable host, bad response. Not retried here; the caller decides
// whether to offer "retry analysis".
var ErrUnavailable = errors.New("inference service unavailable")

type Prediction struct {
	GpsLat     float64 `json:"latitude"`
	GpsLong    float64 `json:"longitude"`
	Confidence float64 `json:"confidence"`
}

type Predictor interface {
	Predict(ctx context.Context, image []byte, topK int) ([]Prediction, error)
}

// Client talks to a GeoCLIP-style model server: POST the raw image, get
// back top-k candidate coordinates with confidence scores.
type Client struct {
	BaseURL string
	client  http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, image []byte, topK int) ([]Prediction, error) {
	url := fmt.Sprintf("%s/predict?top_k=%d", c.BaseURL, topK)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var predictions []Prediction
	if err = json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: empty prediction", ErrUnavailable)
	}
	// Highest confidence first, whatever order the service used
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
	if len(predictions) > topK {
		predictions = predictions[:topK]
	}
	return predictions, nil
}
