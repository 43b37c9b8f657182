package atom

import (
	"encoding/xml"
	"fmt"
)

// Batch operation types, set on entries of a batch feed.
const (
	OperationInsert = "insert"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// BatchOperation is the batch:operation element of a sent entry.
type BatchOperation struct {
	Type string `xml:"type,attr"`
}

// BatchStatus is the batch:status element the server sets on every
// processed entry of a batch response.
type BatchStatus struct {
	Code   int    `xml:"code,attr"`
	Reason string `xml:"reason,attr,omitempty"`
}

// BatchInterrupted marks the entry the server appends when it stopped
// processing a batch partway through. Its presence is what matters for
// reconciliation; the counts are informational.
type BatchInterrupted struct {
	Reason      string `xml:"reason,attr,omitempty"`
	Success     int    `xml:"success,attr"`
	Parsed      int    `xml:"parsed,attr"`
	Error       int    `xml:"error,attr"`
	Unprocessed int    `xml:"unprocessed,attr"`
}

// Product is an atom:entry describing one catalog item. Almost every field
// is optional: empty strings and nil pointers are left out of the request.
type Product struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom entry"`

	// Plain Atom entry fields.
	AtomID  string   `xml:"http://www.w3.org/2005/Atom id,omitempty"`
	Title   string   `xml:"http://www.w3.org/2005/Atom title,omitempty"`
	Content *Content `xml:"http://www.w3.org/2005/Atom content"`
	Links   []Link   `xml:"http://www.w3.org/2005/Atom link"`
	Control *Control `xml:"http://www.w3.org/2007/app control"`

	// Batch control. BatchID correlates a sent entry with its result.
	BatchOperation   *BatchOperation   `xml:"http://schemas.google.com/gdata/batch operation"`
	BatchID          string            `xml:"http://schemas.google.com/gdata/batch id,omitempty"`
	BatchStatus      *BatchStatus      `xml:"http://schemas.google.com/gdata/batch status"`
	BatchInterrupted *BatchInterrupted `xml:"http://schemas.google.com/gdata/batch interrupted"`

	// sc: identification and presentation.
	ExternalID           string      `xml:"http://schemas.google.com/structuredcontent/2009 id,omitempty"`
	Lang                 string      `xml:"http://schemas.google.com/structuredcontent/2009 content_language,omitempty"`
	Country              string      `xml:"http://schemas.google.com/structuredcontent/2009 target_country,omitempty"`
	Channel              string      `xml:"http://schemas.google.com/structuredcontent/2009 channel,omitempty"`
	ExpirationDate       *Timestamp  `xml:"http://schemas.google.com/structuredcontent/2009 expiration_date"`
	ImageLinks           []string    `xml:"http://schemas.google.com/structuredcontent/2009 image_link"`
	AdditionalImageLinks []string    `xml:"http://schemas.google.com/structuredcontent/2009 additional_image_link"`
	Adult                bool        `xml:"http://schemas.google.com/structuredcontent/2009 adult,omitempty"`
	Attributes           []Attribute `xml:"http://schemas.google.com/structuredcontent/2009 attribute"`

	// scp: product attributes.
	Condition             string          `xml:"http://schemas.google.com/structuredcontent/2009/products condition,omitempty"`
	Price                 *Price          `xml:"http://schemas.google.com/structuredcontent/2009/products price"`
	Quantity              *int            `xml:"http://schemas.google.com/structuredcontent/2009/products quantity"`
	Availability          string          `xml:"http://schemas.google.com/structuredcontent/2009/products availability,omitempty"`
	Brand                 string          `xml:"http://schemas.google.com/structuredcontent/2009/products brand,omitempty"`
	GTIN                  string          `xml:"http://schemas.google.com/structuredcontent/2009/products gtin,omitempty"`
	MPN                   string          `xml:"http://schemas.google.com/structuredcontent/2009/products mpn,omitempty"`
	Manufacturer          string          `xml:"http://schemas.google.com/structuredcontent/2009/products manufacturer,omitempty"`
	ProductType           string          `xml:"http://schemas.google.com/structuredcontent/2009/products product_type,omitempty"`
	GoogleProductCategory string          `xml:"http://schemas.google.com/structuredcontent/2009/products google_product_category,omitempty"`
	ItemGroupID           string          `xml:"http://schemas.google.com/structuredcontent/2009/products item_group_id,omitempty"`
	AgeGroup              string          `xml:"http://schemas.google.com/structuredcontent/2009/products age_group,omitempty"`
	Gender                string          `xml:"http://schemas.google.com/structuredcontent/2009/products gender,omitempty"`
	Colors                []string        `xml:"http://schemas.google.com/structuredcontent/2009/products color"`
	Size                  string          `xml:"http://schemas.google.com/structuredcontent/2009/products size,omitempty"`
	Material              string          `xml:"http://schemas.google.com/structuredcontent/2009/products material,omitempty"`
	Pattern               string          `xml:"http://schemas.google.com/structuredcontent/2009/products pattern,omitempty"`
	Features              []string        `xml:"http://schemas.google.com/structuredcontent/2009/products feature"`
	Author                string          `xml:"http://schemas.google.com/structuredcontent/2009/products author,omitempty"`
	Edition               string          `xml:"http://schemas.google.com/structuredcontent/2009/products edition,omitempty"`
	Genre                 string          `xml:"http://schemas.google.com/structuredcontent/2009/products genre,omitempty"`
	Year                  string          `xml:"http://schemas.google.com/structuredcontent/2009/products year,omitempty"`
	ShippingWeight        *ShippingWeight `xml:"http://schemas.google.com/structuredcontent/2009/products shipping_weight"`
	ShippingRules         []Shipping      `xml:"http://schemas.google.com/structuredcontent/2009/products shipping"`
	Taxes                 []Tax           `xml:"http://schemas.google.com/structuredcontent/2009/products tax"`
}

// RemoteID is the identifier the per-product endpoints use, combining
// channel, language, country and the account-scoped ID.
func (p *Product) RemoteID() string {
	return fmt.Sprintf("online:%s:%s:%s", p.Lang, p.Country, p.ExternalID)
}

// Price carries the amount as text; the currency is the unit attribute.
type Price struct {
	Unit  string `xml:"unit,attr,omitempty"`
	Value string `xml:",chardata"`
}

type ShippingWeight struct {
	Unit  string `xml:"unit,attr,omitempty"`
	Value string `xml:",chardata"`
}

type Shipping struct {
	Country string `xml:"http://schemas.google.com/structuredcontent/2009/products shipping_country,omitempty"`
	Region  string `xml:"http://schemas.google.com/structuredcontent/2009/products shipping_region,omitempty"`
	Service string `xml:"http://schemas.google.com/structuredcontent/2009/products shipping_service,omitempty"`
	Price   *Price `xml:"http://schemas.google.com/structuredcontent/2009/products shipping_price"`
}

type Tax struct {
	Country string `xml:"http://schemas.google.com/structuredcontent/2009/products tax_country,omitempty"`
	Region  string `xml:"http://schemas.google.com/structuredcontent/2009/products tax_region,omitempty"`
	Rate    string `xml:"http://schemas.google.com/structuredcontent/2009/products tax_rate,omitempty"`
	Ship    bool   `xml:"http://schemas.google.com/structuredcontent/2009/products tax_ship,omitempty"`
}

// Attribute is a free-form sc:attribute with a name and optional type.
type Attribute struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}
