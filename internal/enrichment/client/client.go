// Package client provides the HTTP client for firmographic enrichment lookups.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"funnel_backend/platform/logger"
)

const (
	enrichPath         = "/organizations/enrich"
	defaultHTTPTimeout = 10 * time.Second
)

// FlexNumber handles JSON values that can be either string or number.
// The provider returns employee counts as numbers for enriched records and
// as strings for records sourced from its legacy index.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	// Try as number first
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexNumber(num)
		return nil
	}
	// Try as string
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexNumber(parsed)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexNumber", string(data))
}

// ToIntPtr converts FlexNumber pointer to int pointer.
func (f *FlexNumber) ToIntPtr() *int {
	if f == nil {
		return nil
	}
	val := int(*f)
	return &val
}

// Client handles firmographic provider requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a new enrichment client.
func New(baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        log,
	}
}

// OrganizationProperties holds the firmographic fields returned by the
// provider. Only the fields the scoring engine consumes are decoded.
type OrganizationProperties struct {
	Name          string      `json:"name"`
	Domain        string      `json:"primary_domain"`
	Industry      string      `json:"industry"`
	EmployeeCount *FlexNumber `json:"estimated_num_employees"`
	Country       string      `json:"country"`
	RevenueBand   string      `json:"annual_revenue_printed"`
	FoundedYear   *FlexNumber `json:"founded_year"`
}

type enrichResponse struct {
	Organization *OrganizationProperties `json:"organization"`
}

type enrichRequest struct {
	Domain string `json:"domain"`
}

// EnrichByEmail looks up the organization behind a business email address.
// The provider is keyed by domain; the part before the @ is discarded.
// A miss (provider knows nothing about the domain) returns (nil, nil).
func (c *Client) EnrichByEmail(ctx context.Context, email string) (*OrganizationProperties, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil, fmt.Errorf("no domain in email")
	}
	domain := strings.ToLower(email[at+1:])

	body, err := json.Marshal(enrichRequest{Domain: domain})
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + enrichPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("enrichment request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("enrichment request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("enrichment status %d", resp.StatusCode)
	}

	var payload enrichResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("enrichment decode failed", "error", err)
		return nil, err
	}

	return payload.Organization, nil
}
