package domain

// ProductFields is the allow-list of product attributes copied into the index.
var ProductFields = []string{
	"id", "name", "description", "permalink", "sku", "inventory", "price",
	"assets", "image", "seo", "sort_order", "extra_fields", "attributes",
	"categories", "related_products", "meta", "active", "created", "updated",
}

// CategoryFields is the allow-list of category attributes copied into the index.
var CategoryFields = []string{
	"id", "name", "slug", "parent_id", "description", "products", "assets",
	"children", "meta", "created", "updated",
}

// Mapper projects a platform entity onto an index document.
type Mapper func(Entity) Document

// MapProduct builds the index document for a product.
func MapProduct(e Entity) Document { return project(e, ProductFields) }

// MapCategory builds the index document for a category.
func MapCategory(e Entity) Document { return project(e, CategoryFields) }

// MapperFor returns the projection used for the given kind, or nil.
func MapperFor(kind EntityKind) Mapper {
	switch kind {
	case KindProducts:
		return MapProduct
	case KindCategories:
		return MapCategory
	default:
		return nil
	}
}

// project copies the allow-listed keys that are present on e. Missing keys stay
// missing in the document; objectID is always set from id.
func project(e Entity, fields []string) Document {
	doc := make(Document, len(fields)+1)
	id, _ := e.ID()
	doc["objectID"] = id
	for _, f := range fields {
		if v, ok := e[f]; ok {
			doc[f] = v
		}
	}
	return doc
}
