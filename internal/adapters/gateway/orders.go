package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"logistics-route-service/internal/domain"
	"logistics-route-service/internal/platform/obs"
	"net/url"
	"strconv"
	"strings"
)

const (
	approvedStatus = "APROBADO"
	dateLayout     = "2006-01-02"
)

type orderPayload struct {
	ID         json.RawMessage `json:"id"`
	ClienteID  json.RawMessage `json:"cliente_id"`
	CustomerID json.RawMessage `json:"customer_id"`
}

type orderEnvelope struct {
	Items []orderPayload `json:"items"`
}

// OrderClient implements ports.OrderGateway against the order service.
type OrderClient struct {
	api                Requester
	listPath           string
	markDispatchedPath string
}

func NewOrderClient(api Requester, listPath, markDispatchedPath string) *OrderClient {
	return &OrderClient{
		api:                api,
		listPath:           listPath,
		markDispatchedPath: markDispatchedPath,
	}
}

// ListApprovedOrders returns approved orders for the query window. Both a
// bare JSON array and an {"items": [...]} envelope are accepted; any other
// body is an empty result. Transport and HTTP errors are reported as
// domain.ErrUpstreamUnavailable.
func (c *OrderClient) ListApprovedOrders(
	ctx context.Context,
	q domain.OrderQuery,
) (_ []domain.OrderRecord, err error) {
	defer obs.Time(ctx, "gateway.orders.ListApproved")(&err)

	params := url.Values{}
	params.Set("tipo", q.Type)
	params.Set("estado", approvedStatus)
	params.Set("fecha_compromiso", q.Date.Format(dateLayout))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.DateFrom != nil {
		params.Set("fc_desde", q.DateFrom.Format(dateLayout))
	}
	if q.DateTo != nil {
		params.Set("fc_hasta", q.DateTo.Format(dateLayout))
	}

	raw, err := c.api.Get(ctx, c.listPath, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	payloads, err := decodeOrderList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", domain.ErrUpstreamUnavailable, err)
	}

	out := make([]domain.OrderRecord, 0, len(payloads))
	for _, p := range payloads {
		customer := parseCustomerID(p.ClienteID)
		if customer == nil {
			customer = parseCustomerID(p.CustomerID)
		}
		out = append(out, domain.OrderRecord{
			ID:         rawString(p.ID),
			CustomerID: customer,
		})
	}

	return out, nil
}

// MarkDispatched performs a single mark-dispatched call.
func (c *OrderClient) MarkDispatched(ctx context.Context, orderID string) (err error) {
	defer obs.Time(ctx, "gateway.orders.MarkDispatched")(&err)

	path := strings.ReplaceAll(c.markDispatchedPath, "{id}", url.PathEscape(orderID))
	if _, err := c.api.Post(ctx, path, struct{}{}); err != nil {
		return fmt.Errorf("mark dispatched order_id=%s: %w", orderID, err)
	}
	return nil
}

func decodeOrderList(raw json.RawMessage) ([]orderPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var list []orderPayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var env orderEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		return env.Items, nil
	default:
		return nil, nil
	}
}

// rawString renders a JSON scalar as text: strings are unquoted, anything
// else keeps its literal form so that validation can reject it later.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func parseCustomerID(raw json.RawMessage) *int64 {
	text := rawString(raw)
	if text == "" || text == "null" {
		return nil
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
