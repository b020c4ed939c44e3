package clientes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/clientes/pkg/openapi"
	"github.com/JaimeStill/clientes/pkg/routes"
)

func newServer(t *testing.T, maxUpload int64) (*http.ServeMux, *harness) {
	t.Helper()
	h := newHarness(t)
	mux := http.NewServeMux()
	routes.Register(mux, h.sys.Handler(maxUpload).Routes())
	return mux, h
}

func do(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, icon []byte, iconType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if icon != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="characterIcon"; filename="avatar.png"`)
		hdr.Set("Content-Type", iconType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(icon)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

const createJSON = `{"claveCliente": 42, "nombre": "Ana", "celular": "5512345678", "email": "ana@empresa.mx", "characterIcon": %s}`

func TestHandlerCreateJSON(t *testing.T) {
	mux, _ := newServer(t, 1<<20)

	rec := do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, `"3"`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "42", got["claveCliente"])
	assert.Equal(t, float64(3), got["characterIcon"])

	rec = do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, `4`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerCreateInvalidIconEchoes(t *testing.T) {
	mux, h := newServer(t, 1<<20)

	for _, raw := range []string{`12`, `"x"`, `true`, `2.5`} {
		rec := do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, raw)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Contains(t, errorBody(t, rec), strings.Trim(raw, `"`), raw)
	}
	assert.Zero(t, h.blobs.calls())
}

func TestHandlerCreateMultipartUpload(t *testing.T) {
	mux, h := newServer(t, 1<<20)

	fields := map[string]string{"claveCliente": "7", "nombre": "Ana", "celular": "5512345678", "email": "ana@empresa.mx"}
	rec := do(mux, multipartRequest(t, "POST", "/clientes", fields, pngBytes, "image/png"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Icon FileRef `json:"characterIcon"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "7-1", got.Icon.FileID)
	assert.Equal(t, 1, h.blobs.uploads)
}

func TestHandlerCreateMultipartRejectsNonImage(t *testing.T) {
	mux, h := newServer(t, 1<<20)

	fields := map[string]string{"claveCliente": "7", "nombre": "Ana", "celular": "5512345678", "email": "ana@empresa.mx"}
	rec := do(mux, multipartRequest(t, "POST", "/clientes", fields, []byte("%PDF-1.4"), "application/pdf"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.blobs.calls())
}

func TestHandlerUploadTooLarge(t *testing.T) {
	mux, _ := newServer(t, 512)

	fields := map[string]string{"claveCliente": "7", "nombre": "Ana", "celular": "5512345678", "email": "ana@empresa.mx"}
	big := append(bytes.Clone(pngBytes), make([]byte, 4096)...)
	rec := do(mux, multipartRequest(t, "POST", "/clientes", fields, big, "image/png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGet(t *testing.T) {
	mux, _ := newServer(t, 1<<20)
	do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, `1`)))

	assert.Equal(t, http.StatusOK, do(mux, httptest.NewRequest("GET", "/clientes/42", nil)).Code)
	assert.Equal(t, http.StatusNotFound, do(mux, httptest.NewRequest("GET", "/clientes/43", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, httptest.NewRequest("GET", "/clientes/4x", nil)).Code)
}

func TestHandlerUpdatePartial(t *testing.T) {
	mux, _ := newServer(t, 1<<20)
	do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, `1`)))

	rec := do(mux, jsonRequest("PUT", "/clientes/42", `{"email": "nuevo@empresa.mx"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got Cliente
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "nuevo@empresa.mx", got.Email)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, 1, got.Icon.Code())

	rec = do(mux, jsonRequest("PUT", "/clientes/99", `{"nombre": "Ana"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(mux, jsonRequest("PUT", "/clientes/42", `{"celular": "12"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	mux, _ := newServer(t, 1<<20)
	do(mux, jsonRequest("POST", "/clientes", fmt.Sprintf(createJSON, `1`)))

	rec := do(mux, httptest.NewRequest("DELETE", "/clientes/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Deleted
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Cliente con clave 42 eliminado correctamente.", got.Message)
	assert.Equal(t, "42", got.Cliente.Key)

	assert.Equal(t, http.StatusNotFound, do(mux, httptest.NewRequest("DELETE", "/clientes/42", nil)).Code)
}

func TestHandlerPage(t *testing.T) {
	mux, _ := newServer(t, 1<<20)
	for i := range 3 {
		body := fmt.Sprintf(`{"claveCliente": "%d", "nombre": "Ana", "celular": "5512345678", "email": "a@b.co", "characterIcon": 0}`, i)
		require.Equal(t, http.StatusOK, do(mux, jsonRequest("POST", "/clientes", body)).Code)
	}

	rec := do(mux, httptest.NewRequest("GET", "/clientes/page/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got PageResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.CountOnThisPage)
	assert.Equal(t, 1, got.TotalPages)
	assert.Len(t, got.Items, 3)

	assert.Equal(t, http.StatusBadRequest, do(mux, httptest.NewRequest("GET", "/clientes/page/2", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, httptest.NewRequest("GET", "/clientes/page/uno", nil)).Code)
}

func TestHandlerMalformedJSON(t *testing.T) {
	mux, _ := newServer(t, 1<<20)

	rec := do(mux, jsonRequest("POST", "/clientes", `{"claveCliente":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesAreDocumented(t *testing.T) {
	h := newHarness(t)
	spec := openapi.NewSpec(&openapi.Config{Title: "Clientes API"}, "test")
	routes.Describe(spec, "/api", h.sys.Handler(1<<20).Routes())

	byKey := spec.Paths["/api/clientes/{key}"]
	require.NotNil(t, byKey)
	assert.Equal(t, "getCliente", byKey.Get.OperationID)
	assert.Equal(t, "updateCliente", byKey.Put.OperationID)
	assert.Equal(t, "deleteCliente", byKey.Delete.OperationID)
	assert.Equal(t, []string{"Clientes"}, byKey.Get.Tags)
	assert.Contains(t, byKey.Get.Responses, http.StatusNotFound)

	require.NotNil(t, spec.Paths["/api/clientes"])
	assert.Contains(t, spec.Paths["/api/clientes"].Post.Responses, http.StatusConflict)
	require.NotNil(t, spec.Paths["/api/clientes/page/{page}"])

	for _, name := range []string{"Cliente", "CharacterIcon", "FileRef", "ClientePage", "Deleted"} {
		assert.Contains(t, spec.Components.Schemas, name)
	}

	_, err := openapi.MarshalJSON(spec)
	require.NoError(t, err)
}
