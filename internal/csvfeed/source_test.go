package csvfeed

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"shopfeed/internal/atom"
)

const header = "id;lang;country;title;description;condition;price;currency;weight;unit;quantity;expires;type;brand;gtin;mpn;link;image\n"

func fullRow(id string) string {
	return id + ";en;US;Red wool scarf;A very warm scarf;new;25.00;USD;0.2;kg;3;2014-03-15 10:30;Apparel;Acme;0123456789012;MPN-1;/scarf;http://img.example.com/scarf.jpg"
}

func newTestSource(rows ...string) *Source {
	return New(strings.NewReader(header+strings.Join(rows, "\n")), ";", "http://shop.example.com")
}

func TestNext_FullRow(t *testing.T) {
	src := newTestSource(fullRow("sku-1"))

	p, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if p == nil {
		t.Fatal("expected a product")
	}

	if p.ExternalID != "sku-1" || p.Lang != "en" || p.Country != "US" {
		t.Errorf("unexpected identity fields: %+v", p)
	}
	if p.Title != "Red wool scarf" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if p.Content == nil || p.Content.Value != "A very warm scarf" || p.Content.Type != "text" {
		t.Errorf("unexpected content %+v", p.Content)
	}
	if p.Price == nil || p.Price.Unit != "USD" || p.Price.Value != "25.00" {
		t.Errorf("unexpected price %+v", p.Price)
	}
	if p.ShippingWeight == nil || p.ShippingWeight.Unit != "kg" || p.ShippingWeight.Value != "0.2" {
		t.Errorf("unexpected weight %+v", p.ShippingWeight)
	}
	if p.Quantity == nil || *p.Quantity != 3 {
		t.Errorf("unexpected quantity %v", p.Quantity)
	}
	if p.ExpirationDate == nil {
		t.Error("expected expiration date")
	}
	if p.Brand != "Acme" || p.GTIN != "0123456789012" || p.MPN != "MPN-1" || p.ProductType != "Apparel" {
		t.Errorf("unexpected optional fields: %+v", p)
	}
	if got := atom.FindLink(p.Links, "alternate"); got != "http://shop.example.com/scarf" {
		t.Errorf("unexpected page link %q", got)
	}
	if len(p.ImageLinks) != 1 || p.ImageLinks[0] != "http://img.example.com/scarf.jpg" {
		t.Errorf("unexpected image links %v", p.ImageLinks)
	}

	// Input exhausted.
	p, err = src.Next()
	if err != nil || p != nil {
		t.Errorf("expected nil, nil at end of input, got %v, %v", p, err)
	}
}

func TestNext_HeaderIsDropped(t *testing.T) {
	// Only a header line: no products, no parse errors.
	src := New(strings.NewReader(header), ";", "")

	p, err := src.Next()
	if err != nil || p != nil {
		t.Errorf("expected empty source, got %v, %v", p, err)
	}
	if len(src.ParseErrors()) != 0 {
		t.Errorf("header must not be parsed: %v", src.ParseErrors())
	}
}

func TestNext_MissingTitleSkipsRow(t *testing.T) {
	bad := "sku-1;en;US;;A very warm scarf;new;25.00;USD;;;;;;;;;/scarf;"
	src := newTestSource(bad, fullRow("sku-2"))

	p, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if p == nil || p.ExternalID != "sku-2" {
		t.Fatalf("expected the following row, got %+v", p)
	}

	errs := src.ParseErrors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d", len(errs))
	}
	if errs[0].ProductID != "sku-1" || errs[0].Row != 2 {
		t.Errorf("unexpected parse error %+v", errs[0])
	}
	if !strings.Contains(errs[0].Message, "Title") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestNext_WeightRules(t *testing.T) {
	weightNoUnit := "sku-1;en;US;Scarf;Warm;new;25.00;USD;0.2;;;;;;;;/scarf;"
	noWeight := "sku-2;en;US;Scarf;Warm;new;25.00;USD;;;;;;;;;/scarf;"
	src := newTestSource(weightNoUnit, noWeight)

	p, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if p == nil || p.ExternalID != "sku-2" {
		t.Fatalf("row with weight but no unit must be skipped, got %+v", p)
	}
	if p.ShippingWeight != nil {
		t.Errorf("expected no weight, got %+v", p.ShippingWeight)
	}

	errs := src.ParseErrors()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "without unit") {
		t.Errorf("unexpected parse errors %v", errs)
	}
}

func TestNext_MalformedValues(t *testing.T) {
	cases := []struct {
		name string
		row  string
		want string
	}{
		{
			name: "bad price",
			row:  "sku-1;en;US;Scarf;Warm;new;abc;USD;;;;;;;;;/scarf;",
			want: "as Price",
		},
		{
			name: "bad quantity",
			row:  "sku-1;en;US;Scarf;Warm;new;25.00;USD;;;many;;;;;;/scarf;",
			want: "as Quantity",
		},
		{
			name: "bad date",
			row:  "sku-1;en;US;Scarf;Warm;new;25.00;USD;;;;15.03.2014;;;;;/scarf;",
			want: "could not be parsed",
		},
		{
			name: "short row",
			row:  "sku-1;en;US",
			want: "expected 18 fields",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := newTestSource(c.row)
			p, err := src.Next()
			if err != nil || p != nil {
				t.Fatalf("row must be skipped, got %v, %v", p, err)
			}
			errs := src.ParseErrors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 parse error, got %d", len(errs))
			}
			if !strings.Contains(errs[0].Message, c.want) {
				t.Errorf("message %q does not contain %q", errs[0].Message, c.want)
			}
		})
	}
}

func TestNextBatch_Sizes(t *testing.T) {
	rows := make([]string, 7)
	for i := range rows {
		rows[i] = fullRow("sku-" + string(rune('a'+i)))
	}
	src := newTestSource(rows...)

	var sizes []int
	for {
		products, err := src.NextBatch(3)
		if err != nil {
			t.Fatalf("next batch: %v", err)
		}
		if len(products) == 0 {
			break
		}
		sizes = append(sizes, len(products))
	}

	// ceil(7/3) = 3 batches, the last with 7 mod 3 = 1 product.
	if len(sizes) != 3 || sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 1 {
		t.Errorf("unexpected batch sizes %v", sizes)
	}
}

func TestNextBatch_ConcurrentPartition(t *testing.T) {
	const n = 500
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fullRow("sku-" + strconv.Itoa(i))
	}
	src := newTestSource(rows...)

	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				products, err := src.NextBatch(7)
				if err != nil {
					t.Errorf("next batch: %v", err)
					return
				}
				if len(products) == 0 {
					return
				}
				mu.Lock()
				for _, p := range products {
					seen[p.ExternalID]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d distinct products, got %d", n, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("product %s handed out %d times", id, count)
		}
	}
}
