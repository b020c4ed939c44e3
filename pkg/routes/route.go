package routes

import (
	"net/http"

	"github.com/JaimeStill/clientes/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler.
// OpenAPI, when set, documents the route in generated specs.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
