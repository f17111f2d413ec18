package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/partnerportal/backend/internal/domain/commerce"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Client implements the commerce Gateway against the platform's REST
// admin API
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new commerce platform client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// GetCustomer fetches a single customer by platform id
func (c *Client) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/customers/%d.json", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var resp CustomerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	if resp.Customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	return resp.Customer.ToDomain(), nil
}

// GetCustomerByEmail looks up a customer by exact email. The platform's
// search is fuzzy, so the results are filtered down to a case-insensitive
// exact match before anything is returned.
func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := url.Values{}
	query.Set("query", "email:"+email)

	respBody, err := c.doRequest(ctx, http.MethodGet, "/customers/search.json", query, nil)
	if err != nil {
		return nil, err
	}

	var resp CustomerListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}

	for i := range resp.Customers {
		if strings.EqualFold(resp.Customers[i].Email, email) {
			return resp.Customers[i].ToDomain(), nil
		}
	}

	return nil, domain.ErrCustomerNotFound
}

// ListCustomers returns all customers, following since_id pagination
// until an incomplete page is seen
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := make([]domain.Customer, 0)
	var sinceID int64

	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprintf("%d", c.config.PageSize))
		if sinceID > 0 {
			query.Set("since_id", fmt.Sprintf("%d", sinceID))
		}

		respBody, err := c.doRequest(ctx, http.MethodGet, "/customers.json", query, nil)
		if err != nil {
			return nil, err
		}

		var resp CustomerListResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
		}

		for i := range resp.Customers {
			customers = append(customers, *resp.Customers[i].ToDomain())
			if resp.Customers[i].ID > sinceID {
				sinceID = resp.Customers[i].ID
			}
		}

		if len(resp.Customers) < c.config.PageSize {
			return customers, nil
		}
	}
}

// CreateCustomer creates a customer on the platform
func (c *Client) CreateCustomer(ctx context.Context, input domain.CreateCustomerInput) (*domain.Customer, error) {
	body := CustomerRequest{Customer: map[string]any{
		"email":             input.Email,
		"first_name":        input.FirstName,
		"last_name":         input.LastName,
		"phone":             input.Phone,
		"note":              input.Note,
		"tags":              input.Tags,
		"accepts_marketing": input.MarketingOptIn,
	}}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/customers.json", nil, body)
	if err != nil {
		return nil, err
	}

	var resp CustomerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	if resp.Customer == nil {
		return nil, domain.ErrInvalidResponse
	}

	return resp.Customer.ToDomain(), nil
}

// UpdateCustomer applies a partial update to an existing customer. Only
// the fields set on the input are sent to the platform.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, input domain.UpdateCustomerInput) (*domain.Customer, error) {
	if input.Empty() {
		// Nothing to change; skip the write and return current state
		return c.GetCustomer(ctx, id)
	}

	fields := map[string]any{"id": id}
	if input.Verified != nil {
		fields["verified_email"] = *input.Verified
	}
	if input.Note != nil {
		fields["note"] = *input.Note
	}
	if input.Tags != nil {
		fields["tags"] = *input.Tags
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.MarketingOptIn != nil {
		fields["accepts_marketing"] = *input.MarketingOptIn
	}

	respBody, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/customers/%d.json", id), nil, CustomerRequest{Customer: fields})
	if err != nil {
		return nil, err
	}

	var resp CustomerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	if resp.Customer == nil {
		return nil, domain.ErrInvalidResponse
	}

	return resp.Customer.ToDomain(), nil
}

// ListOrders returns the customer's orders, newest first
func (c *Client) ListOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	query := url.Values{}
	query.Set("status", "any")

	respBody, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/customers/%d/orders.json", customerID), query, nil)
	if err != nil {
		return nil, err
	}

	var resp OrderListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}

	orders := make([]domain.Order, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, resp.Orders[i].ToDomain())
	}
	return orders, nil
}

// doRequest performs an HTTP request against the platform admin API
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	requestURL := c.config.APIBaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("commerce: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("commerce: failed to create request: %w", err)
	}

	req.Header.Set("X-Access-Token", c.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("commerce: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrCustomerNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure Client implements the commerce Gateway interface
var _ domain.Gateway = (*Client)(nil)
