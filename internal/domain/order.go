package domain

import "time"

// Order type used when the caller does not pick one.
const OrderTypeSale = "SALE"

// OrderRecord is an approved order as returned by the order service.
// ID is kept raw; it is validated when the route is built.
type OrderRecord struct {
	ID         string
	CustomerID *int64
}

// OrderQuery selects approved orders for one commitment date.
type OrderQuery struct {
	Date     time.Time
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// CustomerDetail is the address data of a customer. Both fields are nil
// when the customer service could not be reached.
type CustomerDetail struct {
	Address *string
	City    *string
}
