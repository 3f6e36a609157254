package domain

const (
	DefaultProductsIndex   = "products"
	DefaultCategoriesIndex = "categories"
)

// IntegrationConfig is the per-invocation configuration of the index integration.
type IntegrationConfig struct {
	ApplicationID   string
	AdminAPIKey     string
	ProductsIndex   string
	CategoriesIndex string
}

// HasCredentials reports whether both index credentials are set.
func (c IntegrationConfig) HasCredentials() bool {
	return c.ApplicationID != "" && c.AdminAPIKey != ""
}

// WithDefaults fills empty index names with their defaults.
func (c IntegrationConfig) WithDefaults() IntegrationConfig {
	if c.ProductsIndex == "" {
		c.ProductsIndex = DefaultProductsIndex
	}
	if c.CategoriesIndex == "" {
		c.CategoriesIndex = DefaultCategoriesIndex
	}
	return c
}

// IndexFor returns the target index name for kind.
func (c IntegrationConfig) IndexFor(kind EntityKind) string {
	c = c.WithDefaults()
	if kind == KindCategories {
		return c.CategoriesIndex
	}
	return c.ProductsIndex
}
