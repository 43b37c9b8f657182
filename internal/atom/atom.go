// Package atom holds the wire model for the structured content API: Atom
// feeds and entries extended with the GData batch elements and the sc:/scp:
// product attributes.
package atom

import (
	"encoding/xml"
	"time"
)

// XML namespaces used by the API. Struct tags reference them by URL, which
// is how encoding/xml matches elements regardless of the prefix the server
// chose.
const (
	NSAtom       = "http://www.w3.org/2005/Atom"
	NSApp        = "http://www.w3.org/2007/app"
	NSGData      = "http://schemas.google.com/g/2005"
	NSSC         = "http://schemas.google.com/structuredcontent/2009"
	NSSCProducts = "http://schemas.google.com/structuredcontent/2009/products"
	NSBatch      = "http://schemas.google.com/gdata/batch"
	NSOpenSearch = "http://a9.com/-/spec/opensearch/1.1/"
)

// ContentType is the media type sent with every request body.
const ContentType = "application/atom+xml"

// IsSuccessStatus reports whether an HTTP-like status code counts as
// success, both for whole responses and for per-entry batch:status codes.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

type Link struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
	Href string `xml:"href,attr"`
}

// FindLink returns the href of the first link with the given rel, or "".
func FindLink(links []Link, rel string) string {
	for _, l := range links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

// Content is an atom:content element. On failed batch entries the server
// replaces the description with a gd:errors block.
type Content struct {
	Type   string         `xml:"type,attr,omitempty"`
	Errors *ServiceErrors `xml:"http://schemas.google.com/g/2005 errors"`
	Value  string         `xml:",chardata"`
}

// Control is an app:control element carrying required destinations.
type Control struct {
	Destinations []RequiredDestination `xml:"http://schemas.google.com/structuredcontent/2009 required_destination"`
}

type RequiredDestination struct {
	Dest string `xml:"dest,attr"`
}

// ServiceErrors is the gd:errors block nested in a failed entry, and also
// the body of an error response.
type ServiceErrors struct {
	Errors []ServiceError `xml:"http://schemas.google.com/g/2005 error"`
}

type ServiceError struct {
	Domain         string `xml:"http://schemas.google.com/g/2005 domain,omitempty"`
	Code           string `xml:"http://schemas.google.com/g/2005 code,omitempty"`
	Location       string `xml:"http://schemas.google.com/g/2005 location,omitempty"`
	InternalReason string `xml:"http://schemas.google.com/g/2005 internalReason,omitempty"`
}

// Timestamp marshals as RFC 3339, the format the API uses for all
// timestamps. encoding/xml cannot serialize time.Time directly.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t Timestamp) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(t.Format(time.RFC3339), start)
}

func (t *Timestamp) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
