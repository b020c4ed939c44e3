package clientes

import "github.com/JaimeStill/clientes/pkg/openapi"

func ptr[T any](v T) *T { return &v }

var keyParam = openapi.PathParam("key", "Cliente key", &openapi.Schema{
	Type:    "string",
	Pattern: keyPattern.String(),
	Example: "42",
})

var pageParam = openapi.PathParam("page", "1-based page number", &openapi.Schema{
	Type:    "integer",
	Minimum: ptr(1.0),
})

func withErrors(ok *openapi.Response, codes ...int) map[int]*openapi.Response {
	out := openapi.Errors(codes...)
	out[200] = ok
	return out
}

func formAndJSON(formSchema, jsonSchema string, required bool) *openapi.RequestBody {
	body := openapi.RequestBodyForm(formSchema, required)
	body.Content["application/json"] = &openapi.MediaType{Schema: openapi.SchemaRef(jsonSchema)}
	return body
}

var operations = struct {
	create, get, update, delete, page *openapi.Operation
}{
	create: &openapi.Operation{
		OperationID: "createCliente",
		Summary:     "Register a cliente",
		Description: "characterIcon is a code 0-9 or an image file part.",
		RequestBody: formAndJSON("ClienteForm", "ClienteInput", true),
		Responses:   withErrors(openapi.ResponseJSON("Created cliente", "Cliente"), 400, 401, 409, 429, 500),
	},
	get: &openapi.Operation{
		OperationID: "getCliente",
		Summary:     "Get a cliente by key",
		Parameters:  []*openapi.Parameter{keyParam},
		Responses:   withErrors(openapi.ResponseJSON("Cliente", "Cliente"), 400, 401, 404, 429, 500),
	},
	update: &openapi.Operation{
		OperationID: "updateCliente",
		Summary:     "Update supplied fields of a cliente",
		Description: "Blank fields are ignored. A new character icon releases the previous file.",
		Parameters:  []*openapi.Parameter{keyParam},
		RequestBody: formAndJSON("ClienteForm", "ClienteInput", false),
		Responses:   withErrors(openapi.ResponseJSON("Updated cliente", "Cliente"), 400, 401, 404, 409, 429, 500),
	},
	delete: &openapi.Operation{
		OperationID: "deleteCliente",
		Summary:     "Delete a cliente and its icon file",
		Parameters:  []*openapi.Parameter{keyParam},
		Responses:   withErrors(openapi.ResponseJSON("Deleted cliente", "Deleted"), 400, 401, 404, 429, 500),
	},
	page: &openapi.Operation{
		OperationID: "pageClientes",
		Summary:     "List clientes, 100 per page",
		Parameters:  []*openapi.Parameter{pageParam},
		Responses:   withErrors(openapi.ResponseJSON("Page of clientes", "ClientePage"), 400, 401, 429, 500),
	},
}

var schemas = map[string]*openapi.Schema{
	"FileRef": {
		Type:     "object",
		Required: []string{"fileId", "url"},
		Properties: map[string]*openapi.Schema{
			"fileId": {Type: "string"},
			"url":    {Type: "string", Format: "uri"},
		},
	},
	"CharacterIcon": {
		OneOf: []*openapi.Schema{
			{Type: "integer", Minimum: ptr(0.0), Maximum: ptr(9.0)},
			openapi.SchemaRef("FileRef"),
		},
	},
	"Cliente": {
		Type:     "object",
		Required: []string{"id", fieldKey, fieldName, fieldPhone, fieldEmail, fieldIcon, "createdAt", "updatedAt"},
		Properties: map[string]*openapi.Schema{
			"id":        {Type: "string", Format: "uuid"},
			fieldKey:    {Type: "string", Pattern: keyPattern.String()},
			fieldName:   {Type: "string", MinLength: ptr(2), MaxLength: ptr(100)},
			fieldPhone:  {Type: "string", MinLength: ptr(10), MaxLength: ptr(10)},
			fieldEmail:  {Type: "string", Format: "email"},
			fieldIcon:   openapi.SchemaRef("CharacterIcon"),
			"createdAt": {Type: "string", Format: "date-time"},
			"updatedAt": {Type: "string", Format: "date-time"},
		},
	},
	"ClienteInput": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			fieldKey:   {Type: "string", Pattern: keyPattern.String()},
			fieldName:  {Type: "string"},
			fieldPhone: {Type: "string"},
			fieldEmail: {Type: "string"},
			fieldIcon:  {Description: "Code 0-9 as a number or digit string"},
		},
	},
	"ClienteForm": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			fieldKey:   {Type: "string"},
			fieldName:  {Type: "string"},
			fieldPhone: {Type: "string"},
			fieldEmail: {Type: "string"},
			fieldIcon:  {Type: "string", Format: "binary", Description: "Image file, or a code 0-9 as text"},
		},
	},
	"ClientePage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"items":           {Type: "array", Items: openapi.SchemaRef("Cliente")},
			"countOnThisPage": {Type: "integer"},
			"page":            {Type: "integer"},
			"totalPages":      {Type: "integer"},
		},
	},
	"Deleted": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"message": {Type: "string"},
			"cliente": openapi.SchemaRef("Cliente"),
		},
	},
}
