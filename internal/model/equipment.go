package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status values accepted by the estado field. The set is closed and only
// enforced through the UI's selection control; the backend does not
// re-validate it.
const (
	StatusActive      = "Activo"
	StatusInactive    = "Inactivo"
	StatusMaintenance = "Mantenimiento"
)

// Statuses returns the closed status set in display order.
func Statuses() []string {
	return []string{StatusActive, StatusInactive, StatusMaintenance}
}

// Equipment is one record in the remote collection. The id is assigned by
// the server; the client never generates one. Wire names follow the
// backend's column naming.
type Equipment struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"nombre"`
	Type     string      `json:"tipo"`
	Location string      `json:"ubicacion"`
	Status   string      `json:"estado"`
}

// ErrFieldRequired is returned by Draft.Validate when a required field is
// empty.
var ErrFieldRequired = errors.New("campo obligatorio")

// Draft holds the editable field values for a record not yet created. It
// never carries an id; a successful submission resets it to empty strings.
type Draft struct {
	Name     string
	Type     string
	Location string
	Status   string
}

// Validate reports the first missing required field. All four fields must
// be non-empty before a create request may be issued.
func (d Draft) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"nombre", d.Name},
		{"tipo", d.Type},
		{"ubicacion", d.Location},
		{"estado", d.Status},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrFieldRequired, f.name)
		}
	}
	return nil
}

// Fields returns the draft as wire field name/value pairs, in the order the
// backend documents them.
func (d Draft) Fields() [][2]string {
	return [][2]string{
		{"nombre", d.Name},
		{"tipo", d.Type},
		{"ubicacion", d.Location},
		{"estado", d.Status},
	}
}
