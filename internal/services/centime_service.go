package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var centimeHTTPClient = &http.Client{Timeout: 15 * time.Second}

const defaultCentimeBaseURL = "https://api.centime.dev/v1"

// CentimeService calls the Centime card processor API. All request bodies
// are form-encoded; error responses decode to a typed failure class.
type CentimeService struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewCentimeService constructs a CentimeService. An empty baseURL selects
// the production API.
func NewCentimeService(baseURL, secretKey string) *CentimeService {
	if baseURL == "" {
		baseURL = defaultCentimeBaseURL
	}
	return &CentimeService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    centimeHTTPClient,
	}
}

type centimeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListSources returns up to limit saved cards for the customer.
func (s *CentimeService) ListSources(customerID string, limit int) ([]ProcessorSource, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}, "object": {"card"}}
	body, err := s.do(http.MethodGet, "/customers/"+customerID+"/sources?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []ProcessorSource `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProcessorError{Kind: ProcessorErrAPI, Message: "malformed source list"}
	}
	return resp.Data, nil
}

// CreateCustomer registers a new customer holding the given card token.
func (s *CentimeService) CreateCustomer(email, token string) (*ProcessorCustomer, error) {
	payload := url.Values{"email": {email}, "source": {token}}
	body, err := s.do(http.MethodPost, "/customers", payload)
	if err != nil {
		return nil, err
	}

	var customer ProcessorCustomer
	if err := json.Unmarshal(body, &customer); err != nil || customer.ID == "" {
		return nil, &ProcessorError{Kind: ProcessorErrAPI, Message: "malformed customer object"}
	}
	return &customer, nil
}

// CreateSource attaches the card token to an existing customer.
func (s *CentimeService) CreateSource(customerID, token string) (*ProcessorSource, error) {
	payload := url.Values{"source": {token}}
	body, err := s.do(http.MethodPost, "/customers/"+customerID+"/sources", payload)
	if err != nil {
		return nil, err
	}

	var source ProcessorSource
	if err := json.Unmarshal(body, &source); err != nil || source.ID == "" {
		return nil, &ProcessorError{Kind: ProcessorErrAPI, Message: "malformed source object"}
	}
	return &source, nil
}

// CreateCharge captures a charge against either a stored customer or a
// one-time token.
func (s *CentimeService) CreateCharge(req ChargeRequest) (*ProcessorCharge, error) {
	payload := url.Values{
		"amount":   {strconv.FormatInt(req.Amount, 10)},
		"currency": {req.Currency},
	}
	if req.CustomerID != "" {
		payload.Set("customer", req.CustomerID)
	} else {
		payload.Set("source", req.SourceToken)
	}

	body, err := s.do(http.MethodPost, "/charges", payload)
	if err != nil {
		return nil, err
	}

	var charge ProcessorCharge
	if err := json.Unmarshal(body, &charge); err != nil || charge.ID == "" {
		return nil, &ProcessorError{Kind: ProcessorErrAPI, Message: "malformed charge object"}
	}
	return &charge, nil
}

// RefundCharge reverses a previously captured charge.
func (s *CentimeService) RefundCharge(chargeID string) error {
	payload := url.Values{"charge": {chargeID}}
	_, err := s.do(http.MethodPost, "/refunds", payload)
	return err
}

func (s *CentimeService) do(method, path string, payload url.Values) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBufferString(payload.Encode())
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, &ProcessorError{Kind: ProcessorErrUnknown, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &ProcessorError{Kind: ProcessorErrConnection, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProcessorError{Kind: ProcessorErrConnection, Message: err.Error()}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	return nil, decodeCentimeError(resp.StatusCode, body)
}

// decodeCentimeError maps an error response onto the closed failure
// taxonomy. The body's machine-readable type takes precedence; the HTTP
// status covers responses without one.
func decodeCentimeError(status int, body []byte) *ProcessorError {
	var parsed centimeErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Type != "" {
		kind := ProcessorErrUnknown
		switch parsed.Error.Type {
		case "card_error":
			kind = ProcessorErrCard
		case "rate_limit_error":
			kind = ProcessorErrRateLimit
		case "invalid_request_error":
			kind = ProcessorErrInvalidRequest
		case "authentication_error":
			kind = ProcessorErrAuthentication
		case "api_connection_error":
			kind = ProcessorErrConnection
		case "api_error":
			kind = ProcessorErrAPI
		}
		return &ProcessorError{Kind: kind, Message: parsed.Error.Message}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &ProcessorError{Kind: ProcessorErrRateLimit}
	case status == http.StatusUnauthorized:
		return &ProcessorError{Kind: ProcessorErrAuthentication}
	case status >= 500:
		return &ProcessorError{Kind: ProcessorErrAPI, Message: fmt.Sprintf("status %d", status)}
	default:
		return &ProcessorError{Kind: ProcessorErrUnknown, Message: fmt.Sprintf("status %d, body: %s", status, string(body))}
	}
}
