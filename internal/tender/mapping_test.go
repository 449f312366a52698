package tender

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
)

func TestFromRemote(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(time.UTC)
	record := &mercadopublico.Tender{
		CodigoExterno: "1509-5-L124",
		Nombre:        "Compra de insumos",
		Descripcion:   "Insumos",
		CodigoEstado:  intPtr(5),
		FechaCierre:   "2024-05-20T15:00:00.12",
		Fechas:        &mercadopublico.Dates{FechaPublicacion: "2024-05-01T09:30:00"},
		Comprador:     &mercadopublico.Buyer{RutUnidad: "61.602.123-0", NombreUnidad: "Hospital", RegionUnidad: "Región de Los Lagos"},
		Items: &mercadopublico.Items{Listado: []mercadopublico.Item{
			{CodigoProducto: "1", NombreProducto: "Guantes", Cantidad: 100, UnidadMedida: "Caja"},
		}},
	}

	got := n.FromRemote(record, fixedNow)

	assert.Equal(t, "1509-5-L124", got.Code)
	assert.Equal(t, 5, got.StatusCode)
	require.NotNil(t, got.CloseDate)
	assert.Equal(t, time.Date(2024, time.May, 20, 15, 0, 0, 0, time.UTC), *got.CloseDate)
	require.NotNil(t, got.PublicationDate)
	assert.Equal(t, time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC), *got.PublicationDate)
	assert.Equal(t, "Región de Los Lagos", got.Region)
	assert.Equal(t, "Hospital", got.BuyerName)
	assert.Equal(t, "61.602.123-0", got.BuyerRut)
	assert.Equal(t, []LineItem{{ProductCode: "1", ProductName: "Guantes", Quantity: 100, UnitOfMeasure: "Caja"}}, got.Items)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, fixedNow, got.UpdatedAt)
}

func TestFromRemote_SparseSummary(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(time.UTC)

	got := n.FromRemote(&mercadopublico.Tender{CodigoExterno: "E1", Nombre: "x", CodigoEstado: intPtr(5)}, fixedNow)

	assert.Nil(t, got.CloseDate)
	assert.Nil(t, got.PublicationDate)
	assert.Empty(t, got.BuyerName)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestMergeDetail_ReplacesItems(t *testing.T) {
	t.Parallel()

	created := fixedNow.Add(-time.Hour)
	stored := &Tender{
		Code:        "X",
		Description: "original",
		Items:       []LineItem{{ProductName: "old-1"}, {ProductName: "old-2"}, {ProductName: "old-3"}},
		CreatedAt:   created,
	}
	detail := &mercadopublico.Tender{
		Descripcion: "   ",
		Comprador:   &mercadopublico.Buyer{NombreUnidad: "Municipalidad", RutUnidad: "69.000.000-1", RegionUnidad: "Región Metropolitana"},
		Items: &mercadopublico.Items{Listado: []mercadopublico.Item{
			{NombreProducto: "new-1"}, {NombreProducto: "new-2"},
		}},
	}

	MergeDetail(stored, detail, fixedNow)

	assert.Equal(t, "original", stored.Description, "blank description must not overwrite")
	assert.Equal(t, "Municipalidad", stored.BuyerName)
	assert.Equal(t, "Región Metropolitana", stored.Region)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "new-1", stored.Items[0].ProductName)
	assert.Equal(t, "new-2", stored.Items[1].ProductName)
	assert.Equal(t, created, stored.CreatedAt)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	d := fixedNow
	orig := &Tender{Code: "X", CloseDate: &d, Items: []LineItem{{ProductName: "a"}}}

	c := orig.Clone()
	c.Items[0].ProductName = "b"
	*c.CloseDate = d.Add(time.Hour)

	assert.Equal(t, "a", orig.Items[0].ProductName)
	assert.Equal(t, fixedNow, *orig.CloseDate)
}
