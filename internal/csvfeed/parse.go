package csvfeed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shopfeed/internal/atom"
	apperrors "shopfeed/internal/errors"
)

// The fixed column layout of the input file. Weight value precedes its
// unit, everything else reads left to right.
const (
	colID = iota
	colLang
	colCountry
	colTitle
	colDescription
	colCondition
	colPrice
	colCurrency
	colWeight
	colWeightUnit
	colQuantity
	colExpiration
	colProductType
	colBrand
	colGTIN
	colMPN
	colPageLink
	colImageLink

	numColumns
)

const expirationLayout = "2006-01-02 15:04"

func (s *Source) parseProduct(line string) (*atom.Product, error) {
	fields := strings.Split(line, s.separator)
	if len(fields) < numColumns {
		return nil, apperrors.NewParseError("", line,
			fmt.Sprintf("expected %d fields, got %d", numColumns, len(fields)))
	}

	p, err := s.buildProduct(fields)
	if err != nil {
		if pe, ok := apperrors.IsParseError(err); ok {
			return nil, apperrors.NewParseError(fields[colID], line, pe.Message)
		}
		return nil, err
	}
	return p, nil
}

func (s *Source) buildProduct(fields []string) (*atom.Product, error) {
	p := &atom.Product{}

	var err error
	if p.ExternalID, err = parseString(fields[colID], "ID", true); err != nil {
		return nil, err
	}
	if p.Lang, err = parseString(fields[colLang], "Content language", true); err != nil {
		return nil, err
	}
	if p.Country, err = parseString(fields[colCountry], "Target country", true); err != nil {
		return nil, err
	}
	if p.Title, err = parseString(fields[colTitle], "Title", true); err != nil {
		return nil, err
	}

	description, err := parseString(fields[colDescription], "Description", true)
	if err != nil {
		return nil, err
	}
	p.Content = &atom.Content{Type: "text", Value: description}

	if p.Condition, err = parseString(fields[colCondition], "Condition", true); err != nil {
		return nil, err
	}

	price, err := parseDecimal(fields[colPrice], "Price", true)
	if err != nil {
		return nil, err
	}
	currency, err := parseString(fields[colCurrency], "Currency", true)
	if err != nil {
		return nil, err
	}
	p.Price = &atom.Price{Unit: currency, Value: price}

	if p.ShippingWeight, err = parseWeight(fields[colWeight], fields[colWeightUnit]); err != nil {
		return nil, err
	}
	if p.Quantity, err = parseInt(fields[colQuantity], "Quantity"); err != nil {
		return nil, err
	}
	if p.ExpirationDate, err = parseDate(fields[colExpiration], "Expiration date"); err != nil {
		return nil, err
	}
	if p.ProductType, err = parseString(fields[colProductType], "Product type", false); err != nil {
		return nil, err
	}
	if p.Brand, err = parseString(fields[colBrand], "Brand", false); err != nil {
		return nil, err
	}
	if p.GTIN, err = parseString(fields[colGTIN], "GTIN", false); err != nil {
		return nil, err
	}
	if p.MPN, err = parseString(fields[colMPN], "MPN", false); err != nil {
		return nil, err
	}

	p.Links = append(p.Links, atom.Link{
		Rel:  "alternate",
		Type: "text/html",
		Href: s.homepage + fields[colPageLink],
	})

	imageLink, err := parseString(fields[colImageLink], "Image link", false)
	if err != nil {
		return nil, err
	}
	if imageLink != "" {
		p.ImageLinks = []string{imageLink}
	}

	return p, nil
}

func parseString(input, attribute string, required bool) (string, error) {
	if input == "" {
		if required {
			return "", apperrors.NewParseError("", "", "Required argument missing: "+attribute)
		}
		return "", nil
	}
	return strings.TrimSpace(input), nil
}

func parseDecimal(input, attribute string, required bool) (string, error) {
	v, err := parseString(input, attribute, required)
	if err != nil || v == "" {
		return "", err
	}
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return "", apperrors.NewParseError("", "",
			fmt.Sprintf("Could not parse %q as %s", input, attribute))
	}
	return v, nil
}

func parseInt(input, attribute string) (*int, error) {
	v, err := parseString(input, attribute, false)
	if err != nil || v == "" {
		return nil, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.NewParseError("", "",
			fmt.Sprintf("Could not parse %q as %s", input, attribute))
	}
	return &n, nil
}

func parseDate(input, attribute string) (*atom.Timestamp, error) {
	v, err := parseString(input, attribute, false)
	if err != nil || v == "" {
		return nil, err
	}
	t, err := time.Parse(expirationLayout, v)
	if err != nil {
		return nil, apperrors.NewParseError("", "",
			fmt.Sprintf("Date (%s) could not be parsed", input))
	}
	return atom.NewTimestamp(t), nil
}

// parseWeight pairs the weight value with its unit. A value without a unit
// is an error; neither means no weight at all.
func parseWeight(weight, unit string) (*atom.ShippingWeight, error) {
	parsedUnit, err := parseString(unit, "weight unit", false)
	if err != nil {
		return nil, err
	}
	parsedWeight, err := parseDecimal(weight, "weight", false)
	if err != nil {
		return nil, err
	}
	if parsedWeight == "" {
		return nil, nil
	}
	if parsedUnit == "" {
		return nil, apperrors.NewParseError("", "", "Weight given without unit")
	}
	return &atom.ShippingWeight{Unit: parsedUnit, Value: parsedWeight}, nil
}
