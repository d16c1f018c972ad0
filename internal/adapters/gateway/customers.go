package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"strconv"
	"strings"
)

// CustomerClient implements ports.CustomerGateway against the user service.
type CustomerClient struct {
	api        Requester
	detailPath string
}

func NewCustomerClient(api Requester, detailPath string) *CustomerClient {
	return &CustomerClient{api: api, detailPath: detailPath}
}

// GetCustomerDetail reads the customer's address and city. Spanish keys
// take precedence over their English aliases; empty values count as absent.
func (c *CustomerClient) GetCustomerDetail(
	ctx context.Context,
	customerID int64,
) (_ domain.CustomerDetail, err error) {
	defer obs.Time(ctx, "gateway.customers.GetDetail")(&err)

	path := strings.ReplaceAll(c.detailPath, "{id}", strconv.FormatInt(customerID, 10))
	raw, err := c.api.Get(ctx, path, nil)
	if err != nil {
		return domain.CustomerDetail{}, fmt.Errorf("customer_id=%d: %w", customerID, err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return domain.CustomerDetail{}, nil
	}

	return domain.CustomerDetail{
		Address: firstText(body, "direccion", "address"),
		City:    firstText(body, "ciudad", "city"),
	}, nil
}

func firstText(body map[string]json.RawMessage, keys ...string) *string {
	for _, k := range keys {
		raw, ok := body[k]
		if !ok {
			continue
		}
		s := rawString(raw)
		if s == "" || s == "null" {
			continue
		}
		return &s
	}
	return nil
}
