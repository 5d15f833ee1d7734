// Package flatten explodes the nested order -> product -> review hierarchy
// into a single wide table, one row per (order, product, review) triple. The
// output is reindexed to a fixed column list; that projection is the contract
// every downstream transformer depends on.
package flatten

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/starling-data/starling/pkg/dataset"
	"github.com/starling-data/starling/pkg/frame"
)

// Columns is the fixed projection of the flattened table. Columns absent from
// a given row are filled with nil; extra source fields are dropped.
var Columns = []string{
	"order_id", "product_id", "product_title", "product_description", "product_category",
	"product_price", "product_rating", "product_stock", "product_tags", "product_brand",
	"product_sku", "product_weight", "product_dimensions_width", "product_dimensions_height",
	"product_dimensions_depth", "product_warrantyInformation", "product_shippingInformation",
	"product_availabilityStatus", "product_review_rating", "product_review_comment",
	"product_review_date", "product_review_reviewerName", "product_review_reviewerEmail",
	"product_returnPolicy", "product_minimumOrderQuantity", "product_meta_createdAt",
	"product_meta_updatedAt", "product_meta_barcode", "product_meta_qrCode", "product_images",
	"product_thumbnail", "product_quantity", "product_total", "product_discountedTotal",
	"order_total", "order_discountedTotal", "order_totalProducts", "order_totalQuantity",
	"customer_id", "customer_firstName", "customer_lastName", "customer_maidenName",
	"customer_age", "customer_gender", "customer_email", "customer_phone", "customer_username",
	"customer_password", "customer_birthDate", "customer_image", "customer_bloodGroup",
	"customer_height", "customer_weight", "customer_eyeColor", "customer_hair_color",
	"customer_hair_type", "customer_ip", "customer_address_address", "customer_address_city",
	"customer_address_state", "customer_address_stateCode", "customer_address_postalCode",
	"customer_address_coordinates_lat", "customer_address_coordinates_lng",
	"customer_address_country", "customer_macAddress", "customer_university",
	"customer_bank_cardExpire", "customer_bank_cardNumber", "customer_bank_cardType",
	"customer_bank_currency", "customer_bank_iban", "customer_company_department",
	"customer_company_name", "customer_company_title", "customer_company_address_address",
	"customer_company_address_city", "customer_company_address_state",
	"customer_company_address_stateCode", "customer_company_address_postalCode",
	"customer_company_address_coordinates_lat", "customer_company_address_coordinates_lng",
	"customer_company_address_country", "customer_ein", "customer_ssn", "customer_userAgent",
	"customer_crypto_coin", "customer_crypto_wallet", "customer_crypto_network", "customer_role",
}

// Order-level fields that collide with nested ones get disambiguated by prefix.
var orderRenames = map[string]string{
	"id":              "order_id",
	"total":           "order_total",
	"discountedTotal": "order_discountedTotal",
	"totalProducts":   "order_totalProducts",
	"totalQuantity":   "order_totalQuantity",
}

// Flatten unrolls the document. A product with n reviews contributes n rows,
// a product with zero reviews contributes exactly one row with nil review
// fields, and each row duplicates the full order, product and customer
// payload. A malformed nested structure fails the whole flattening; nothing
// is staged on error.
func Flatten(doc *dataset.Document) (*frame.Frame, error) {
	out := frame.New(Columns...)

	for i, order := range doc.Orders {
		orderFields := make(map[string]any)
		for key, value := range order {
			if key == "products" {
				continue
			}
			flattenValue(orderFields, key, value)
		}
		for from, to := range orderRenames {
			if value, ok := orderFields[from]; ok {
				delete(orderFields, from)
				orderFields[to] = value
			}
		}

		products, err := nestedList(order, "products")
		if err != nil {
			return nil, errors.Wrapf(err, "order %d has a malformed products list", i)
		}

		for j, rawProduct := range products {
			product, ok := rawProduct.(map[string]any)
			if !ok {
				return nil, errors.Errorf("order %d, product %d is not an object", i, j)
			}

			productFields := make(map[string]any)
			for key, value := range product {
				if key == "reviews" {
					continue
				}
				flattenValue(productFields, "product_"+key, value)
			}

			reviews, err := nestedList(product, "reviews")
			if err != nil {
				return nil, errors.Wrapf(err, "order %d, product %d has a malformed reviews list", i, j)
			}

			// a product with no reviews still yields one row with nil review fields
			if len(reviews) == 0 {
				reviews = []any{map[string]any{}}
			}

			for k, rawReview := range reviews {
				review, ok := rawReview.(map[string]any)
				if !ok {
					return nil, errors.Errorf("order %d, product %d, review %d is not an object", i, j, k)
				}

				reviewFields := make(map[string]any)
				for key, value := range review {
					flattenValue(reviewFields, "product_review_"+key, value)
				}

				row := make([]any, len(Columns))
				for c, column := range Columns {
					row[c] = firstOf(column, reviewFields, productFields, orderFields)
				}
				out.Rows = append(out.Rows, row)
			}
		}
	}

	return out, nil
}

// flattenValue flattens nested objects with "_"-joined prefixes; lists are
// kept as a single cell, serialized as JSON.
func flattenValue(out map[string]any, key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for nestedKey, nestedValue := range v {
			flattenValue(out, key+"_"+nestedKey, nestedValue)
		}
	case []any:
		serialized, err := json.Marshal(v)
		if err != nil {
			out[key] = nil
			return
		}
		out[key] = string(serialized)
	default:
		out[key] = value
	}
}

// nestedList returns the named list field. A missing or null "reviews" field
// is tolerated as empty; a present non-list value is a shape error.
func nestedList(m map[string]any, key string) ([]any, error) {
	value, ok := m[key]
	if !ok || value == nil {
		if key == "products" {
			return nil, errors.Errorf("the '%s' field is missing", key)
		}
		return nil, nil
	}

	list, ok := value.([]any)
	if !ok {
		return nil, errors.Errorf("the '%s' field is not a list", key)
	}

	return list, nil
}

func firstOf(column string, maps ...map[string]any) any {
	for _, m := range maps {
		if value, ok := m[column]; ok {
			return value
		}
	}

	return nil
}
