package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/clientes/pkg/openapi"
)

func newSpec() *openapi.Spec {
	return openapi.NewSpec(&openapi.Config{Title: "Test API", Description: "desc"}, "1.0.0")
}

func TestNewSpec(t *testing.T) {
	spec := newSpec()

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" || spec.Info.Description != "desc" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
}

func TestAddOperation(t *testing.T) {
	spec := newSpec()
	get := &openapi.Operation{Summary: "get"}
	put := &openapi.Operation{Summary: "put"}

	spec.AddOperation("/things/{key}", "GET", get)
	spec.AddOperation("/things/{key}", "put", put)
	spec.AddOperation("/things/{key}", "PATCH", &openapi.Operation{})

	item := spec.Paths["/things/{key}"]
	if item == nil {
		t.Fatal("path not added")
	}
	if item.Get != get || item.Put != put {
		t.Errorf("operations not attached: %+v", item)
	}
	if item.Post != nil || item.Delete != nil {
		t.Error("unexpected operations attached")
	}
}

func TestRequireBearer(t *testing.T) {
	spec := newSpec()
	spec.RequireBearer()

	scheme, ok := spec.Components.SecuritySchemes[openapi.BearerScheme]
	if !ok {
		t.Fatal("bearer scheme missing")
	}
	if scheme.Type != "http" || scheme.Scheme != "bearer" {
		t.Errorf("scheme: got %+v", scheme)
	}
	if len(spec.Security) != 1 {
		t.Fatalf("security: got %d requirements", len(spec.Security))
	}
	if _, ok := spec.Security[0][openapi.BearerScheme]; !ok {
		t.Error("global security should reference the bearer scheme")
	}
}

func TestRefs(t *testing.T) {
	if ref := openapi.SchemaRef("Cliente").Ref; ref != "#/components/schemas/Cliente" {
		t.Errorf("schema ref: got %s", ref)
	}
	if ref := openapi.ResponseRef("NotFound").Ref; ref != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", ref)
	}
}

func TestRequestBodies(t *testing.T) {
	tests := []struct {
		name        string
		body        *openapi.RequestBody
		contentType string
	}{
		{"json", openapi.RequestBodyJSON("ClienteInput", true), "application/json"},
		{"form", openapi.RequestBodyForm("ClienteForm", true), "multipart/form-data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.body.Required {
				t.Error("required should be true")
			}
			mt, ok := tt.body.Content[tt.contentType]
			if !ok {
				t.Fatalf("missing %s content", tt.contentType)
			}
			if mt.Schema.Ref == "" {
				t.Error("schema should be a ref")
			}
		})
	}
}

func TestPathParam(t *testing.T) {
	p := openapi.PathParam("key", "Cliente key", &openapi.Schema{Type: "string", Pattern: "^[0-9]+$"})

	if p.In != "path" || !p.Required {
		t.Errorf("path params should be required and in path: %+v", p)
	}
	if p.Schema.Pattern != "^[0-9]+$" {
		t.Errorf("schema pattern: got %s", p.Schema.Pattern)
	}
}

func TestErrors(t *testing.T) {
	got := openapi.Errors(400, 404, 418)

	if len(got) != 2 {
		t.Fatalf("errors: got %d responses, want 2", len(got))
	}
	if got[404].Ref != "#/components/responses/NotFound" {
		t.Errorf("404 ref: got %s", got[404].Ref)
	}

	c := openapi.NewComponents()
	for code := range openapi.Errors(400, 401, 404, 409, 429, 500) {
		name := openapi.Errors(code)[code].Ref[len("#/components/responses/"):]
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("component response %s missing for %d", name, code)
		}
	}
}

func TestAddSchemas(t *testing.T) {
	c := openapi.NewComponents()
	c.AddSchemas(map[string]*openapi.Schema{"Cliente": {Type: "object"}})

	if _, ok := c.Schemas["Cliente"]; !ok {
		t.Error("Cliente schema not added")
	}
	if _, ok := c.Schemas["Error"]; !ok {
		t.Error("default Error schema should still exist")
	}
}

func TestServeSpec(t *testing.T) {
	data, err := openapi.MarshalJSON(newSpec())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}

func TestConfigFinalize(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Clientes API" {
		t.Errorf("title: got %s, want Clientes API", cfg.Title)
	}

	t.Setenv("TEST_OPENAPI_TITLE", "Custom API")
	cfg = openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Custom API" {
		t.Errorf("title: got %s, want Custom API", cfg.Title)
	}
}

func TestConfigMerge(t *testing.T) {
	base := openapi.Config{Title: "Base", Description: "kept"}
	base.Merge(&openapi.Config{Title: "Overlay"})

	if base.Title != "Overlay" || base.Description != "kept" {
		t.Errorf("merge: got %+v", base)
	}
}
