package flatten

import (
	"testing"

	"github.com/starling-data/starling/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderFixture() map[string]any {
	return map[string]any{
		"id":              1.0,
		"total":           149.99,
		"discountedTotal": 120.0,
		"totalProducts":   2.0,
		"totalQuantity":   3.0,
		"customer": map[string]any{
			"id":        7.0,
			"firstName": "Emily",
			"lastName":  "Johnson",
			"email":     "emily@example.com",
			"address": map[string]any{
				"city": "Phoenix",
				"coordinates": map[string]any{
					"lat": -77.16,
					"lng": -92.08,
				},
			},
		},
		"products": []any{
			map[string]any{
				"id":       11.0,
				"title":    "Red Lipstick",
				"category": "beauty",
				"tags":     []any{"beauty", "lipstick"},
				"dimensions": map[string]any{
					"width":  2.0,
					"height": 8.0,
					"depth":  2.0,
				},
				"reviews": []any{
					map[string]any{
						"rating":       5.0,
						"comment":      "Great product!",
						"date":         "2024-05-23T08:56:21.618Z",
						"reviewerName": "Liam",
					},
				},
			},
			map[string]any{
				"id":      12.0,
				"title":   "Eyeshadow Palette",
				"reviews": []any{},
			},
		},
	}
}

func TestFlatten_FanOut(t *testing.T) {
	t.Parallel()

	// one order, two products, the first with one review and the second with
	// zero reviews: exactly two rows.
	flat, err := Flatten(&dataset.Document{Orders: []map[string]any{orderFixture()}})
	require.NoError(t, err)

	require.Equal(t, 2, flat.Len())
	assert.Equal(t, Columns, flat.Columns)

	// both rows replicate order and customer payloads
	for row := 0; row < 2; row++ {
		assert.Equal(t, 1.0, flat.Value(row, "order_id"))
		assert.Equal(t, 149.99, flat.Value(row, "order_total"))
		assert.Equal(t, 7.0, flat.Value(row, "customer_id"))
		assert.Equal(t, "Emily", flat.Value(row, "customer_firstName"))
		assert.Equal(t, "Phoenix", flat.Value(row, "customer_address_city"))
		assert.Equal(t, -77.16, flat.Value(row, "customer_address_coordinates_lat"))
	}

	// first product carries its review, serialized tags and dimensions
	assert.Equal(t, 11.0, flat.Value(0, "product_id"))
	assert.Equal(t, "beauty", flat.Value(0, "product_category"))
	assert.Equal(t, `["beauty","lipstick"]`, flat.Value(0, "product_tags"))
	assert.Equal(t, 8.0, flat.Value(0, "product_dimensions_height"))
	assert.Equal(t, 5.0, flat.Value(0, "product_review_rating"))
	assert.Equal(t, "Liam", flat.Value(0, "product_review_reviewerName"))

	// the zero-review product still yields one row, with nil review fields
	assert.Equal(t, 12.0, flat.Value(1, "product_id"))
	assert.Nil(t, flat.Value(1, "product_review_rating"))
	assert.Nil(t, flat.Value(1, "product_review_comment"))
	assert.Nil(t, flat.Value(1, "product_tags"))
}

func TestFlatten_MultipleReviews(t *testing.T) {
	t.Parallel()

	order := map[string]any{
		"id": 4.0,
		"products": []any{
			map[string]any{
				"id": 9.0,
				"reviews": []any{
					map[string]any{"rating": 1.0},
					map[string]any{"rating": 2.0},
					map[string]any{"rating": 3.0},
				},
			},
		},
	}

	flat, err := Flatten(&dataset.Document{Orders: []map[string]any{order}})
	require.NoError(t, err)

	require.Equal(t, 3, flat.Len())
	for row := 0; row < 3; row++ {
		assert.Equal(t, 4.0, flat.Value(row, "order_id"))
		assert.Equal(t, 9.0, flat.Value(row, "product_id"))
		assert.Equal(t, float64(row+1), flat.Value(row, "product_review_rating"))
	}
}

func TestFlatten_MalformedStructures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order map[string]any
	}{
		{
			name:  "missing products",
			order: map[string]any{"id": 1.0},
		},
		{
			name:  "products is not a list",
			order: map[string]any{"id": 1.0, "products": "nope"},
		},
		{
			name:  "product is not an object",
			order: map[string]any{"id": 1.0, "products": []any{"nope"}},
		},
		{
			name: "reviews is not a list",
			order: map[string]any{
				"id":       1.0,
				"products": []any{map[string]any{"id": 2.0, "reviews": "nope"}},
			},
		},
		{
			name: "review is not an object",
			order: map[string]any{
				"id":       1.0,
				"products": []any{map[string]any{"id": 2.0, "reviews": []any{5.0}}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Flatten(&dataset.Document{Orders: []map[string]any{tt.order}})
			require.Error(t, err)
		})
	}
}

func TestFlatten_MissingReviewsFieldIsTolerated(t *testing.T) {
	t.Parallel()

	order := map[string]any{
		"id":       1.0,
		"products": []any{map[string]any{"id": 2.0}},
	}

	flat, err := Flatten(&dataset.Document{Orders: []map[string]any{order}})
	require.NoError(t, err)
	require.Equal(t, 1, flat.Len())
	assert.Nil(t, flat.Value(0, "product_review_rating"))
}

func TestFlatten_UnknownFieldsAreDropped(t *testing.T) {
	t.Parallel()

	order := map[string]any{
		"id":           1.0,
		"mysteryField": "dropped",
		"products":     []any{map[string]any{"id": 2.0, "reviews": []any{}}},
	}

	flat, err := Flatten(&dataset.Document{Orders: []map[string]any{order}})
	require.NoError(t, err)

	_, hasColumn := flat.ColumnIndex("mysteryField")
	assert.False(t, hasColumn)
	assert.Len(t, flat.Columns, len(Columns))
}
