// Package tender holds the stored tender model and the rules that turn remote
// records into stored ones: timestamp normalization, validity and mapping.
package tender

import "time"

// StatusPublished is the remote status code of an open, published tender
const StatusPublished = 5

// Tender is a tender as persisted in the store. Code is the primary key.
type Tender struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StatusCode      int        `json:"statusCode"`
	CloseDate       *time.Time `json:"closeDate,omitempty"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
	Region          string     `json:"region,omitempty"`
	BuyerName       string     `json:"buyerName,omitempty"`
	BuyerRut        string     `json:"buyerRut,omitempty"`
	Items           []LineItem `json:"items"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// LineItem is a product or service requested by a tender. It has no identity
// of its own and is always replaced together with its tender's item list.
type LineItem struct {
	ProductCode   string  `json:"productCode,omitempty"`
	ProductName   string  `json:"productName"`
	Description   string  `json:"description,omitempty"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure,omitempty"`
}

// Clone returns a deep copy of t
func (t *Tender) Clone() *Tender {
	if t == nil {
		return nil
	}
	c := *t
	if t.CloseDate != nil {
		d := *t.CloseDate
		c.CloseDate = &d
	}
	if t.PublicationDate != nil {
		d := *t.PublicationDate
		c.PublicationDate = &d
	}
	if t.Items != nil {
		c.Items = make([]LineItem, len(t.Items))
		copy(c.Items, t.Items)
	}
	return &c
}

// IsPublished reports whether the stored status is the published one
func (t *Tender) IsPublished() bool {
	return t != nil && t.StatusCode == StatusPublished
}
