package pipeline

// Orders declares the orders star-schema pipeline. The load order encodes
// the warehouse's foreign key dependencies: a table is loaded only after the
// dimensions it references have been loaded.
func Orders(name, schedule string) *Pipeline {
	asset := func(n string, t AssetType, upstreams ...string) *Asset {
		a := &Asset{Name: n, Type: t}
		for _, upstream := range upstreams {
			a.AddUpstream(upstream)
		}
		return a
	}

	return &Pipeline{
		Name:     name,
		Schedule: schedule,
		Assets: []*Asset{
			asset("extract_dataset", AssetTypeIngest),
			asset("flatten_dataset", AssetTypeFlatten, "extract_dataset"),

			asset("transform_dim_category", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_tag", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_product_review", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_address", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_customer_demo", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_customer", AssetTypeTransform, "flatten_dataset"),
			asset("transform_fact_sales", AssetTypeTransform, "flatten_dataset"),
			asset("transform_dim_product", AssetTypeTransform, "transform_dim_category"),
			asset("transform_bridge_product_tag", AssetTypeTransform, "transform_dim_tag", "transform_dim_product"),

			asset("load_dim_category", AssetTypeLoad, "transform_dim_category"),
			asset("load_dim_tag", AssetTypeLoad, "transform_dim_tag"),
			asset("load_dim_customer_demo", AssetTypeLoad, "transform_dim_customer_demo"),
			asset("load_dim_address", AssetTypeLoad, "transform_dim_address"),
			asset("load_dim_product", AssetTypeLoad, "load_dim_category", "load_dim_tag", "transform_dim_product"),
			asset("load_dim_product_review", AssetTypeLoad, "transform_dim_product_review", "load_dim_product"),
			asset("load_bridge_product_tag", AssetTypeLoad, "transform_bridge_product_tag", "load_dim_tag", "load_dim_product"),
			asset("load_dim_customer", AssetTypeLoad, "transform_dim_customer", "load_dim_customer_demo", "load_dim_address"),
			asset("load_fact_sales", AssetTypeLoad, "load_dim_customer", "load_dim_product"),
		},
	}
}
