package tender

import (
	"strings"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
)

// FromRemote maps a remote record to a stored tender, flattening buyer fields
// and copying items. CreatedAt and UpdatedAt are both set to now; stores keep
// the original CreatedAt on update.
func (n *Normalizer) FromRemote(r *mercadopublico.Tender, now time.Time) *Tender {
	t := &Tender{
		Code:        r.CodigoExterno,
		Name:        r.Nombre,
		Description: r.Descripcion,
		Items:       MapItems(r.ItemList()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status, ok := r.Status(); ok {
		t.StatusCode = status
	}
	if d, ok := n.CloseDate(r); ok {
		t.CloseDate = &d
	}
	if d, ok := n.PublicationDate(r); ok {
		t.PublicationDate = &d
	}
	if r.Comprador != nil {
		t.Region = r.Comprador.RegionUnidad
		t.BuyerName = r.Comprador.NombreUnidad
		t.BuyerRut = r.Comprador.RutUnidad
	}
	return t
}

// MapItems converts remote items, preserving order
func MapItems(items []mercadopublico.Item) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{
			ProductCode:   it.CodigoProducto.String(),
			ProductName:   it.NombreProducto,
			Description:   it.Descripcion,
			Quantity:      it.Cantidad,
			UnitOfMeasure: it.UnidadMedida,
		})
	}
	return out
}

// MergeDetail folds a detail record into stored: buyer fields, region, a
// non-blank description and the complete item list (replacing the old one).
func MergeDetail(stored *Tender, detail *mercadopublico.Tender, now time.Time) {
	if detail.Comprador != nil {
		stored.BuyerName = detail.Comprador.NombreUnidad
		stored.BuyerRut = detail.Comprador.RutUnidad
		stored.Region = detail.Comprador.RegionUnidad
	}
	if strings.TrimSpace(detail.Descripcion) != "" {
		stored.Description = detail.Descripcion
	}
	stored.Items = MapItems(detail.ItemList())
	stored.UpdatedAt = now
}
