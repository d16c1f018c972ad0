package domain

import "errors"

var (
	// User-facing text returned when the order service has nothing to route.
	ErrNoOrdersFound = errors.New("No hay ventas para generar ruta de entrega en la fecha seleccionada.")

	ErrUpstreamUnavailable = errors.New("no fue posible consultar pedidos aprobados")
	ErrRouteAlreadyExists  = errors.New("route already exists for date")
	ErrRouteNotFound       = errors.New("route not found")
	ErrStopNotFound        = errors.New("stop not found")
	ErrInvalidStopStatus   = errors.New("invalid stop status")
)
