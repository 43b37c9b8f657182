package atom

import "encoding/xml"

// Feed is an Atom feed of products. The same shape is used for batch
// requests, batch responses and paged listings.
type Feed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`

	ID      string     `xml:"http://www.w3.org/2005/Atom id,omitempty"`
	Title   string     `xml:"http://www.w3.org/2005/Atom title,omitempty"`
	Updated *Timestamp `xml:"http://www.w3.org/2005/Atom updated"`
	Links   []Link     `xml:"http://www.w3.org/2005/Atom link"`

	TotalResults int `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults,omitempty"`
	StartIndex   int `xml:"http://a9.com/-/spec/opensearch/1.1/ startIndex,omitempty"`
	ItemsPerPage int `xml:"http://a9.com/-/spec/opensearch/1.1/ itemsPerPage,omitempty"`

	Entries []*Product `xml:"http://www.w3.org/2005/Atom entry"`
}

// NewBatchFeed wraps entries for a batch request.
func NewBatchFeed(entries []*Product) *Feed {
	return &Feed{Entries: entries}
}

// NextLink returns the href of the rel="next" pagination link, or "" when
// this is the last page.
func (f *Feed) NextLink() string {
	return FindLink(f.Links, "next")
}
