// Package clientes implements the customer domain: validated Cliente
// records, their character icons, and the blob files those icons may own.
package clientes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/clientes/pkg/pagination"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 100

// Cliente is the customer aggregate.
type Cliente struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"claveCliente"`
	Name      string    `json:"nombre"`
	Phone     string    `json:"celular"`
	Email     string    `json:"email"`
	Icon      Icon      `json:"characterIcon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IconKind discriminates the two Icon shapes.
type IconKind uint8

const (
	// IconCode is an enumerated icon in [0, 9].
	IconCode IconKind = iota + 1
	// IconFile is an icon backed by a blob store object.
	IconFile
)

func (k IconKind) String() string {
	switch k {
	case IconCode:
		return "code"
	case IconFile:
		return "file"
	default:
		return "invalid"
	}
}

// FileRef identifies an object in the blob store.
type FileRef struct {
	FileID string `json:"fileId"`
	URL    string `json:"url"`
}

// Icon is either an enumerated code or a file reference, never both.
// The zero value is invalid; build icons with CodeIcon or FileIcon.
type Icon struct {
	kind IconKind
	code int
	file FileRef
}

// CodeIcon returns an enumerated icon. Fails for codes outside [0, 9].
func CodeIcon(code int) (Icon, error) {
	if code < 0 || code > 9 {
		return Icon{}, invalidIcon(code)
	}
	return Icon{kind: IconCode, code: code}, nil
}

// FileIcon returns a file-backed icon.
func FileIcon(ref FileRef) Icon {
	return Icon{kind: IconFile, file: ref}
}

// Kind reports which shape the icon holds.
func (i Icon) Kind() IconKind { return i.kind }

// Code returns the enumerated value. Valid only when Kind is IconCode.
func (i Icon) Code() int { return i.code }

// File returns the blob reference. Valid only when Kind is IconFile.
func (i Icon) File() FileRef { return i.file }

// Valid reports whether the icon was built by one of its constructors.
func (i Icon) Valid() bool {
	return i.kind == IconCode || i.kind == IconFile
}

// MarshalJSON encodes a code icon as a bare integer and a file icon as
// {"fileId", "url"}.
func (i Icon) MarshalJSON() ([]byte, error) {
	switch i.kind {
	case IconCode:
		return json.Marshal(i.code)
	case IconFile:
		return json.Marshal(i.file)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the shapes produced by MarshalJSON.
func (i *Icon) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Icon{}
		return nil
	}

	if data[0] == '{' {
		var ref FileRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		if ref.FileID == "" {
			return fmt.Errorf("file icon missing fileId")
		}
		*i = FileIcon(ref)
		return nil
	}

	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	icon, err := CodeIcon(code)
	if err != nil {
		return err
	}
	*i = icon
	return nil
}

// RawIcon is an unclassified icon as received from a caller:
// IconText, IconNumber, or IconUpload. A nil RawIcon means none was supplied.
type RawIcon interface {
	rawIcon()
}

// IconText is an icon supplied as a string, expected to be a single digit.
type IconText string

// IconNumber is an icon supplied as an integer, expected to be in [0, 9].
type IconNumber int

// IconUpload is an icon supplied as an uploaded file.
type IconUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (IconText) rawIcon()   {}
func (IconNumber) rawIcon() {}
func (IconUpload) rawIcon() {}

// CreateCommand carries the fields needed to register a new Cliente.
type CreateCommand struct {
	Key   string
	Name  string
	Phone string
	Email string
	Icon  RawIcon
}

// UpdateCommand carries a partial update. Nil fields are not supplied and
// leave the stored value untouched.
type UpdateCommand struct {
	Key   string
	Name  *string
	Phone *string
	Email *string
	Icon  RawIcon
}

// Changes is the validated set of fields an update writes.
type Changes struct {
	Name      *string
	Phone     *string
	Email     *string
	Icon      *Icon
	UpdatedAt time.Time
}

// PageResult is one listing page of Clientes.
type PageResult = pagination.PageResult[Cliente]

// Deleted is the confirmation returned after removing a Cliente.
type Deleted struct {
	Message string  `json:"message"`
	Cliente Cliente `json:"cliente"`
}
