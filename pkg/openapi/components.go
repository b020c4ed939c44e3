package openapi

import "maps"

// BearerScheme names the security scheme added by Spec.RequireBearer.
const BearerScheme = "bearerAuth"

// NewComponents creates Components with the shared error body and the
// error responses every operation can return.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":      errorResponse("Invalid request"),
			"Unauthorized":    errorResponse("Missing or invalid bearer token"),
			"NotFound":        errorResponse("Resource not found"),
			"Conflict":        errorResponse("Resource already exists"),
			"TooManyRequests": errorResponse("Rate limit exceeded"),
			"InternalError":   errorResponse("Dependency failure"),
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}
