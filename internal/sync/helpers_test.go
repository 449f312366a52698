package sync

import (
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

var testNow = time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC)

func statusCode(code int) *int {
	return &code
}

// summary builds a remote summary closing closeIn after testNow
func summary(code string, status int, closeIn time.Duration) mercadopublico.Tender {
	return mercadopublico.Tender{
		CodigoExterno: code,
		Nombre:        "Licitación " + code,
		CodigoEstado:  statusCode(status),
		FechaCierre:   testNow.Add(closeIn).Format(tender.TimestampLayout),
	}
}

func detail(code string, items ...string) *mercadopublico.Tender {
	d := &mercadopublico.Tender{
		CodigoExterno: code,
		Descripcion:   "Descripción completa de " + code,
		CodigoEstado:  statusCode(tender.StatusPublished),
		Comprador: &mercadopublico.Buyer{
			NombreUnidad: "Hospital Regional",
			RutUnidad:    "61.602.123-0",
			RegionUnidad: "Región de Los Lagos",
		},
		Items: &mercadopublico.Items{Cantidad: len(items)},
	}
	for _, name := range items {
		d.Items.Listado = append(d.Items.Listado, mercadopublico.Item{NombreProducto: name, Cantidad: 1})
	}
	return d
}
