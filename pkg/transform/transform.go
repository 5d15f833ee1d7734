// Package transform derives the star-schema tables from the flattened staging
// table. Every transformer takes its inputs read-only and returns a brand new
// frame, so re-running a transformer on the same input reproduces the same
// output.
package transform

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/starling-data/starling/pkg/frame"
)

// Category derives the category dimension: distinct category values in
// first-occurrence order, enumerated from 1.
func Category(flat *frame.Frame) (*frame.Frame, error) {
	categories, err := flat.Project("product_category")
	if err != nil {
		return nil, err
	}

	categories, err = categories.DropDuplicates()
	if err != nil {
		return nil, err
	}

	out := frame.New("category_id", "category_name")
	for i, row := range categories.Rows {
		out.Rows = append(out.Rows, []any{int64(i + 1), row[0]})
	}

	return out, nil
}

// Tag derives the tag dimension. Every row's serialized tag list is parsed
// and trimmed; rows whose tag field fails to parse are skipped for this
// dimension. Surrogate keys are assigned over the lexicographically sorted
// deduplicated set so that re-runs produce identical keys.
func Tag(flat *frame.Frame) (*frame.Frame, error) {
	idx, ok := flat.ColumnIndex("product_tags")
	if !ok {
		return nil, errors.New("the flattened table has no 'product_tags' column")
	}

	set := make(map[string]bool)
	for _, row := range flat.Rows {
		tags, err := parseTags(row[idx])
		if err != nil {
			continue
		}

		for _, tag := range tags {
			set[tag] = true
		}
	}

	names := lo.Keys(set)
	sort.Strings(names)

	out := frame.New("tag_id", "tag_name")
	for i, name := range names {
		out.Rows = append(out.Rows, []any{int64(i + 1), name})
	}

	return out, nil
}

// Product derives the product dimension, resolving category names to their
// surrogate keys through the category dimension. Products whose category has
// no match keep a nil category_id; no row is ever dropped.
func Product(flat, category *frame.Frame) (*frame.Frame, error) {
	products, err := flat.Project(
		"product_id", "product_title", "product_description", "product_price",
		"product_rating", "product_stock", "product_weight", "product_dimensions_height",
		"product_dimensions_width", "product_dimensions_depth", "product_sku", "product_category",
	)
	if err != nil {
		return nil, err
	}

	products, err = products.DropDuplicates()
	if err != nil {
		return nil, err
	}

	joined, err := products.LeftJoin(category, "product_category", "category_name", "category_id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve category surrogate keys")
	}

	renamed := joined.Rename(map[string]string{
		"product_title":             "title",
		"product_description":       "description",
		"product_price":             "price",
		"product_rating":            "rating",
		"product_stock":             "stock",
		"product_weight":            "weight",
		"product_dimensions_height": "height",
		"product_dimensions_width":  "width",
		"product_dimensions_depth":  "depth",
		"product_sku":               "sku",
	})

	return renamed.Project(
		"product_id", "title", "description", "price", "rating",
		"stock", "weight", "height", "width", "depth", "sku", "category_id",
	)
}

// ProductReview derives the review dimension. The source has no natural
// review identity, so rows are deduplicated on the full review tuple and
// enumerated. Review dates are normalized to a calendar date; an unparsable
// date fails the whole transform.
func ProductReview(flat *frame.Frame) (*frame.Frame, error) {
	reviews, err := flat.Project(
		"product_id", "product_review_rating", "product_review_comment",
		"product_review_date", "product_review_reviewerName", "product_review_reviewerEmail",
	)
	if err != nil {
		return nil, err
	}

	reviews, err = reviews.DropDuplicates()
	if err != nil {
		return nil, err
	}

	dateIdx, _ := reviews.ColumnIndex("product_review_date")
	out := frame.New(
		"review_id", "product_id", "review_rating", "review_comment",
		"review_date", "reviewer_name", "reviewer_email",
	)
	for i, row := range reviews.Rows {
		date, err := normalizeDate(row[dateIdx])
		if err != nil {
			return nil, errors.Wrap(err, "failed to normalize a review date")
		}

		out.Rows = append(out.Rows, []any{
			int64(i + 1), row[0], row[1], row[2], date, row[4], row[5],
		})
	}

	return out, nil
}

// Demographics derives the customer demographics dimension. The customer's
// natural identifier is reused as the surrogate demographics_id, and gender
// is normalized to a canonical capitalization.
func Demographics(flat *frame.Frame) (*frame.Frame, error) {
	demo, err := flat.Project("customer_id", "customer_birthDate", "customer_gender", "customer_company_title")
	if err != nil {
		return nil, err
	}

	demo, err = demo.DropDuplicates()
	if err != nil {
		return nil, err
	}

	out := frame.New("demographics_id", "customer_birthdate", "customer_gender", "customer_job")
	for _, row := range demo.Rows {
		out.Rows = append(out.Rows, []any{row[0], row[1], capitalize(row[2]), row[3]})
	}

	return out, nil
}

// Address derives the customer address dimension, reusing the customer's
// natural identifier as the surrogate address_id.
func Address(flat *frame.Frame) (*frame.Frame, error) {
	addresses, err := flat.Project(
		"customer_id", "customer_address_address", "customer_address_city",
		"customer_address_state", "customer_address_postalCode", "customer_address_country",
		"customer_address_coordinates_lat", "customer_address_coordinates_lng",
	)
	if err != nil {
		return nil, err
	}

	addresses, err = addresses.DropDuplicates()
	if err != nil {
		return nil, err
	}

	renamed := addresses.Rename(map[string]string{
		"customer_id":                      "address_id",
		"customer_address_address":         "address_line",
		"customer_address_city":            "city",
		"customer_address_state":           "state",
		"customer_address_postalCode":      "postal_code",
		"customer_address_country":         "country",
		"customer_address_coordinates_lat": "coordinates_lat",
		"customer_address_coordinates_lng": "coordinates_lng",
	})

	return renamed.Project(
		"address_id", "address_line", "city", "state",
		"postal_code", "country", "coordinates_lat", "coordinates_lng",
	)
}

// Customer derives the main customer dimension. demographics_id and
// address_id are both set to customer_id by construction; the source never
// carries more than one demographics or address record per customer, so the
// 1:1:1 collapse holds.
func Customer(flat *frame.Frame) (*frame.Frame, error) {
	customers, err := flat.Project("customer_id", "customer_firstName", "customer_lastName", "customer_email")
	if err != nil {
		return nil, err
	}

	customers, err = customers.DropDuplicates()
	if err != nil {
		return nil, err
	}

	out := frame.New("customer_id", "first_name", "last_name", "email", "demographics_id", "address_id")
	for _, row := range customers.Rows {
		out.Rows = append(out.Rows, []any{row[0], row[1], row[2], row[3], row[0], row[0]})
	}

	return out, nil
}

// BridgeProductTag resolves the many-to-many product/tag relation through the
// tag dimension. A row whose tag list fails to parse contributes zero
// associations without failing the transform; tag data is optional
// enrichment, unlike the fail-fast flattening step.
func BridgeProductTag(flat, tag *frame.Frame) (*frame.Frame, error) {
	productIdx, ok := flat.ColumnIndex("product_id")
	if !ok {
		return nil, errors.New("the flattened table has no 'product_id' column")
	}
	tagsIdx, ok := flat.ColumnIndex("product_tags")
	if !ok {
		return nil, errors.New("the flattened table has no 'product_tags' column")
	}

	candidates := frame.New("product_id", "tag_name")
	for _, row := range flat.Rows {
		tags, err := parseTags(row[tagsIdx])
		if err != nil {
			continue
		}

		for _, name := range tags {
			candidates.Rows = append(candidates.Rows, []any{row[productIdx], name})
		}
	}

	joined, err := candidates.LeftJoin(tag, "tag_name", "tag_name", "tag_id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve tag surrogate keys")
	}

	pairs, err := joined.Project("product_id", "tag_id")
	if err != nil {
		return nil, err
	}

	return pairs.DropDuplicates()
}

// FactSales derives one measurement row per (order, product, customer) sale
// event, enumerated with a surrogate sale_id.
func FactSales(flat *frame.Frame) (*frame.Frame, error) {
	sales, err := flat.Project(
		"order_id", "product_id", "customer_id",
		"product_quantity", "product_total", "product_discountedTotal",
	)
	if err != nil {
		return nil, err
	}

	sales, err = sales.DropDuplicates()
	if err != nil {
		return nil, err
	}

	out := frame.New("sale_id", "order_id", "product_id", "customer_id", "quantity", "sales_total", "discount_total")
	for i, row := range sales.Rows {
		out.Rows = append(out.Rows, []any{int64(i + 1), row[0], row[1], row[2], row[3], row[4], row[5]})
	}

	return out, nil
}

// parseTags decodes a serialized tag list cell into trimmed tag names. A nil
// cell or anything that is not a JSON array of strings is a parse failure;
// the caller decides whether that is fatal.
func parseTags(cell any) ([]string, error) {
	serialized, ok := cell.(string)
	if !ok {
		return nil, errors.New("the tag cell is not a serialized list")
	}

	var raw []any
	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		return nil, errors.Wrap(err, "the tag cell is not a valid list")
	}

	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		name, ok := entry.(string)
		if !ok {
			return nil, errors.New("the tag list contains a non-string entry")
		}

		tags = append(tags, strings.TrimSpace(name))
	}

	return tags, nil
}

func capitalize(cell any) any {
	value, ok := cell.(string)
	if !ok || value == "" {
		return cell
	}

	runes := []rune(strings.ToLower(value))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
