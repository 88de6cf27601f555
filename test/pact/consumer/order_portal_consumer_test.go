//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/order-desk-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	ID              string   `json:"id"`
	OrderID         string   `json:"orderId"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	DeliveryAddress string   `json:"deliveryAddress"`
	Items           []string `json:"items"`
	DeliveryTime    string   `json:"deliveryTime"`
	Status          string   `json:"status"`
}

type orderEnvelope struct {
	Message string       `json:"message"`
	Order   orderPayload `json:"order"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func TestOrderPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	orderMatcher := func(status string) matchers.Map {
		return matchers.Map{
			"id":              matchers.Like(pacttest.SeededOrderID),
			"orderId":         matchers.Regex("8c7e6a1e-2f0b-4f55-9a4e-1b2c3d4e5f60", "^[0-9a-f-]{36}$"),
			"name":            matchers.Like("Pact Customer"),
			"email":           matchers.Like(pacttest.CustomerEmail),
			"deliveryAddress": matchers.Like("1 Contract Road"),
			"items":           matchers.ArrayMinLike("Margherita", 1),
			"deliveryTime":    matchers.Regex("2024-06-12T10:45:00Z", "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}.*$"),
			"status":          matchers.S(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request to place an order").
		WithRequest("POST", "/api/orders/place", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExamplePlaceOrderPayload())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Order placed successfully"),
				"order":   orderMatcher("active"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateActiveOrder).
		UponReceiving("a request to view a customer's orders").
		WithRequest("GET", "/api/orders/view/"+pacttest.CustomerEmail).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(orderMatcher("active"), 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request to view orders of a customer without any").
		WithRequest("GET", "/api/orders/view/"+pacttest.UnknownEmail).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"message": matchers.S("No orders found")})
		})

	pact.AddInteraction().
		Given(pacttest.StateActiveOrder).
		UponReceiving("a request to cancel an active order").
		WithRequest("POST", "/api/orders/cancel", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"email": pacttest.CustomerEmail, "orderId": pacttest.SeededOrderID})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Order cancelled successfully"),
				"order":   orderMatcher("cancelled"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateMissingOrder).
		UponReceiving("a request to cancel a missing order").
		WithRequest("POST", "/api/orders/cancel", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"email": pacttest.CustomerEmail, "orderId": pacttest.MissingOrderID})
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"message": matchers.S("Order not found")})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrderClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		placed, err := client.Place(ctx, pacttest.ExamplePlaceOrderPayload())
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if placed.Order.ID == "" || placed.Order.Status != "active" {
			return fmt.Errorf("unexpected placed order %+v", placed.Order)
		}

		orders, err := client.View(ctx, pacttest.CustomerEmail)
		if err != nil {
			return fmt.Errorf("view orders: %w", err)
		}
		if len(orders) == 0 {
			return fmt.Errorf("expected at least one order")
		}

		if _, err := client.View(ctx, pacttest.UnknownEmail); !isStatus(err, http.StatusNotFound) {
			return fmt.Errorf("expected 404 for unknown customer, got %v", err)
		}

		cancelled, err := client.Cancel(ctx, pacttest.CustomerEmail, pacttest.SeededOrderID)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		if cancelled.Order.Status != "cancelled" {
			return fmt.Errorf("expected cancelled status, got %q", cancelled.Order.Status)
		}

		if _, err := client.Cancel(ctx, pacttest.CustomerEmail, pacttest.MissingOrderID); !isStatus(err, http.StatusNotFound) {
			return fmt.Errorf("expected 404 for missing order, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

func isStatus(err error, status int) bool {
	apiErr, ok := err.(apiError)
	return ok && apiErr.status == status
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrderClient(config pactconsumer.MockServerConfig) *orderClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &orderClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *orderClient) Place(ctx context.Context, payload map[string]any) (*orderEnvelope, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/orders/place", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *orderClient) View(ctx context.Context, email string) ([]orderPayload, error) {
	var out []orderPayload
	if err := c.do(ctx, http.MethodGet, "/api/orders/view/"+email, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderClient) Cancel(ctx context.Context, email, id string) (*orderEnvelope, error) {
	var out orderEnvelope
	body := map[string]any{"email": email, "orderId": id}
	if err := c.do(ctx, http.MethodPost, "/api/orders/cancel", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *orderClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	var (
		req *http.Request
		err error
	)
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&payload)
		message := payload.Message
		if message == "" {
			message = payload.Error
		}
		return apiError{status: res.StatusCode, message: message}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
