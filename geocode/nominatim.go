package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pinaly/logging"
)

// Geocoder resolves coordinates to a human-readable place name. An empty
// string means the name is unavailable; a missing name never blocks
// location confirmation, so there is no error return.
type Geocoder interface {
	ReverseGeocode(lat, long float64) string
}

// Nominatim's usage policy asks for at most one request per second
const throttling = time.Second

type nominatimAddress struct {
	City         string `json:"city"`
	Municipality string `json:"municipality"`
	Province     string `json:"province"`
	Country      string `json:"country"`
}

type nominatimLocation struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

func (n *nominatimLocation) placeName() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	city := n.Address.City
	if city == "" {
		city = n.Address.Municipality
	}
	if city == "" {
		city = n.Address.Province
	}
	if city != "" && n.Address.Country != "" {
		return city + ", " + n.Address.Country
	}
	if city != "" {
		return city
	}
	return n.Address.Country
}

type Nominatim struct {
	URL      string // reverse endpoint, e.g. https://nominatim.openstreetmap.org/reverse
	Language string

	client      http.Client
	mutex       sync.Mutex
	lastRequest time.Time
}

func NewNominatim(url, language string) *Nominatim {
	return &Nominatim{
		URL:         url,
		Language:    language,
		client:      http.Client{Timeout: 10 * time.Second},
		lastRequest: time.Now().Add(-10 * time.Second),
	}
}

func (n *Nominatim) ReverseGeocode(lat, long float64) string {
	n.mutex.Lock()
	if since := time.Since(n.lastRequest); since < throttling {
		time.Sleep(throttling - since)
	}
	n.lastRequest = time.Now()
	n.mutex.Unlock()

	url := fmt.Sprintf("%s?format=json&lat=%f&lon=%f", n.URL, lat, long)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("accept-language", n.Language)
	resp, err := n.client.Do(req)
	if err != nil {
		logging.L.Warnf("reverse geocode request failed: %v", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logging.L.Warnf("reverse geocode for (%f, %f): status %d", lat, long, resp.StatusCode)
		return ""
	}
	result := &nominatimLocation{}
	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		logging.L.Warnf("reverse geocode decode: %v", err)
		return ""
	}
	return result.placeName()
}
