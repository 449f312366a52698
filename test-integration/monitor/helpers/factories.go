package helpers

import (
	"fmt"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// santiago is the zone the fake API reports timestamps in
var santiago = mustLoadLocation("America/Santiago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// RemoteTimestamp formats t the way the remote API does
func RemoteTimestamp(t time.Time) string {
	return t.In(santiago).Format(tender.TimestampLayout)
}

// RemoteTender builds a list summary with the given status whose close date is
// closesIn from now
func RemoteTender(code string, status int, closesIn time.Duration) mercadopublico.Tender {
	now := time.Now()
	return mercadopublico.Tender{
		CodigoExterno:    code,
		Nombre:           fmt.Sprintf("Tender %s", code),
		CodigoEstado:     &status,
		FechaCierre:      RemoteTimestamp(now.Add(closesIn)),
		FechaPublicacion: RemoteTimestamp(now.Add(-24 * time.Hour)),
	}
}

// RemoteDetail returns summary enriched with a buyer and itemCount line items
func RemoteDetail(summary mercadopublico.Tender, region string, itemCount int) mercadopublico.Tender {
	detail := summary
	detail.Descripcion = "Detail of " + summary.Nombre
	detail.Comprador = &mercadopublico.Buyer{
		RutUnidad:       "61.000.000-0",
		NombreUnidad:    "Unidad de compras",
		RegionUnidad:    region,
		NombreOrganismo: "Organismo de prueba",
	}
	items := make([]mercadopublico.Item, 0, itemCount)
	for i := range itemCount {
		items = append(items, mercadopublico.Item{
			CodigoProducto: mercadopublico.FlexString(fmt.Sprintf("%d", 43211500+i)),
			NombreProducto: fmt.Sprintf("Product %d", i+1),
			Cantidad:       float64(i + 1),
			UnidadMedida:   "Unidad",
		})
	}
	detail.Items = &mercadopublico.Items{Cantidad: itemCount, Listado: items}
	return detail
}
