package mercadopublico

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListResponse is the envelope returned by every /licitaciones.json call
type ListResponse struct {
	Cantidad      int      `json:"Cantidad"`
	FechaCreacion string   `json:"FechaCreacion"`
	Version       string   `json:"Version"`
	Listado       []Tender `json:"Listado"`
}

// Tender is a remote tender record. The list endpoint returns a sparse summary
// and the detail endpoint the fully populated record; both share this shape.
type Tender struct {
	CodigoExterno    string `json:"CodigoExterno"`
	Nombre           string `json:"Nombre"`
	Descripcion      string `json:"Descripcion"`
	CodigoEstado     *int   `json:"CodigoEstado"`
	FechaCierre      string `json:"FechaCierre"`
	FechaPublicacion string `json:"FechaPublicacion"`
	Fechas           *Dates `json:"Fechas,omitempty"`
	Comprador        *Buyer `json:"Comprador,omitempty"`
	Items            *Items `json:"Items,omitempty"`
}

// Dates groups the lifecycle dates of a tender
type Dates struct {
	FechaCreacion     string `json:"FechaCreacion"`
	FechaCierre       string `json:"FechaCierre"`
	FechaInicio       string `json:"FechaInicio"`
	FechaFinal        string `json:"FechaFinal"`
	FechaPublicacion  string `json:"FechaPublicacion"`
	FechaAdjudicacion string `json:"FechaAdjudicacion"`
}

// Buyer is the purchasing unit of a tender
type Buyer struct {
	RutUnidad       string `json:"RutUnidad"`
	NombreUnidad    string `json:"NombreUnidad"`
	RegionUnidad    string `json:"RegionUnidad"`
	NombreOrganismo string `json:"NombreOrganismo"`
}

// Items wraps the item list; the API nests it under "Listado"
type Items struct {
	Cantidad int    `json:"Cantidad"`
	Listado  []Item `json:"Listado"`
}

// Item is a single product or service line of a tender
type Item struct {
	CodigoProducto FlexString `json:"CodigoProducto"`
	NombreProducto string     `json:"NombreProducto"`
	Descripcion    string     `json:"Descripcion"`
	Cantidad       float64    `json:"Cantidad"`
	UnidadMedida   string     `json:"UnidadMedida"`
}

// Status returns the status code and whether it was present in the payload
func (t *Tender) Status() (int, bool) {
	if t == nil || t.CodigoEstado == nil {
		return 0, false
	}
	return *t.CodigoEstado, true
}

// ItemList returns the items of the tender, or nil when none were sent
func (t *Tender) ItemList() []Item {
	if t == nil || t.Items == nil {
		return nil
	}
	return t.Items.Listado
}

// FlexString decodes a JSON string or number into a string. Product codes come
// back as numbers from the API but are identifiers, not quantities.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product code must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the decoded value
func (f FlexString) String() string {
	return string(f)
}
