package clientes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/clientes/pkg/formatting"
	"github.com/JaimeStill/clientes/pkg/handlers"
	"github.com/JaimeStill/clientes/pkg/routes"
)

// Form and JSON field names.
const (
	fieldKey   = "claveCliente"
	fieldName  = "nombre"
	fieldPhone = "celular"
	fieldEmail = "email"
	fieldIcon  = "characterIcon"
)

// Handler provides HTTP endpoints for cliente operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "clientes"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for cliente endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/clientes",
		Tags:    []string{"Clientes"},
		Schemas: schemas,
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: operations.create},
			{Method: "GET", Pattern: "/page/{page}", Handler: h.Page, OpenAPI: operations.page},
			{Method: "GET", Pattern: "/{key}", Handler: h.Get, OpenAPI: operations.get},
			{Method: "PUT", Pattern: "/{key}", Handler: h.Update, OpenAPI: operations.update},
			{Method: "DELETE", Pattern: "/{key}", Handler: h.Delete, OpenAPI: operations.delete},
		},
	}
}

// Create registers a cliente from a multipart form or a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInput(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	cmd := CreateCommand{
		Key:   in.value(fieldKey),
		Name:  in.value(fieldName),
		Phone: in.value(fieldPhone),
		Email: in.value(fieldEmail),
		Icon:  in.icon,
	}

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Get returns a single cliente by key.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.sys.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Update applies the supplied fields to the cliente identified by the path key.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInput(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	cmd := UpdateCommand{
		Key:   r.PathValue("key"),
		Name:  in.optional(fieldName),
		Phone: in.optional(fieldPhone),
		Email: in.optional(fieldEmail),
		Icon:  in.icon,
	}

	c, err := h.sys.Update(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Delete removes a cliente by key and returns its last state.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	d, err := h.sys.Delete(r.Context(), r.PathValue("key"))
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// Page returns one fixed-size page of clientes.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %q is not a number", ErrInvalidPage, r.PathValue("page")))
		return
	}

	result, err := h.sys.Page(r.Context(), page)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// input is a request body normalized from either encoding.
type input struct {
	fields map[string]string
	icon   RawIcon
}

func (in input) value(name string) string {
	return in.fields[name]
}

func (in input) optional(name string) *string {
	v, ok := in.fields[name]
	if !ok {
		return nil
	}
	return &v
}

func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return h.readMultipart(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return input{}, h.bodyError(err)
		}
		return formInput(r.PostForm, nil), nil
	default:
		return h.readJSON(r)
	}
}

func (h *Handler) readMultipart(r *http.Request) (input, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return input{}, h.bodyError(err)
	}

	var upload *IconUpload
	file, header, err := r.FormFile(fieldIcon)
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return input{}, h.bodyError(err)
		}
		upload = &IconUpload{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
			Filename:    header.Filename,
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		return input{}, h.bodyError(err)
	}

	return formInput(r.MultipartForm.Value, upload), nil
}

func formInput(values map[string][]string, upload *IconUpload) input {
	in := input{fields: make(map[string]string)}
	for _, name := range []string{fieldKey, fieldName, fieldPhone, fieldEmail} {
		if v, ok := values[name]; ok && len(v) > 0 {
			in.fields[name] = v[0]
		}
	}

	if upload != nil {
		in.icon = upload
	} else if v, ok := values[fieldIcon]; ok && len(v) > 0 {
		in.icon = IconText(v[0])
	}
	return in
}

func (h *Handler) readJSON(r *http.Request) (input, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return input{fields: map[string]string{}}, nil
		}
		return input{}, h.bodyError(err)
	}

	in := input{fields: make(map[string]string)}
	for _, name := range []string{fieldKey, fieldName, fieldPhone, fieldEmail} {
		raw, ok := body[name]
		if !ok || isNull(raw) {
			continue
		}
		v, err := jsonScalar(raw)
		if err != nil {
			return input{}, fmt.Errorf("%w: %s: %v", ErrInvalidRequest, name, err)
		}
		in.fields[name] = v
	}

	if raw, ok := body[fieldIcon]; ok && !isNull(raw) {
		in.icon = jsonIcon(raw)
	}

	return in, nil
}

// jsonScalar accepts strings and numbers, returning numbers in their literal form.
func jsonScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number")
}

func jsonIcon(raw json.RawMessage) RawIcon {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return IconText(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return IconNumber(n)
	}
	return IconText(string(raw))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (h *Handler) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: file exceeds the %s upload limit", ErrInvalidRequest, formatting.FormatBytes(h.maxUploadSize, 0))
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
