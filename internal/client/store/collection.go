package store

import "slices"

// Field names shared by the built-in collections.
const (
	FieldTenantID = "tenant_id"
	FieldShopID   = "shop_id"
	FieldName     = "name"
	FieldSKU      = "sku"
	FieldBarcode  = "barcode"
	FieldPhone    = "phone"
	FieldEmail    = "email"
	FieldEntity   = "entity"
	FieldSynced   = "synced"
)

// Collection describes a named set of records and the fields its records
// are indexed by.
type Collection struct {
	Name string
	// Indexes may be used with GetAllByIndex.
	Indexes []string
	// SearchFields are matched by Search.
	SearchFields []string
	// ScopeFields must be present in the Scope of every Search and Count.
	ScopeFields []string
}

var (
	Products = Collection{
		Name:         "products",
		Indexes:      []string{FieldTenantID, FieldShopID, FieldSKU, FieldBarcode},
		SearchFields: []string{FieldName, FieldSKU, FieldBarcode},
		ScopeFields:  []string{FieldTenantID, FieldShopID},
	}
	Customers = Collection{
		Name:         "customers",
		Indexes:      []string{FieldTenantID, FieldPhone, FieldEmail},
		SearchFields: []string{FieldName, FieldPhone, FieldEmail},
		ScopeFields:  []string{FieldTenantID},
	}
	Carts = Collection{
		Name:    "cart",
		Indexes: []string{FieldShopID},
	}
	OfflineQueue = Collection{
		Name:    "offlineQueue",
		Indexes: []string{FieldEntity, FieldSynced},
	}
	SyncMeta = Collection{
		Name: "syncMeta",
	}
)

func (c Collection) indexed(name string) bool {
	return slices.Contains(c.Indexes, name) || slices.Contains(c.ScopeFields, name)
}

// Scope restricts Search and Count to records whose fields equal the given
// values, e.g. Scope{FieldTenantID: "7", FieldShopID: "3"}.
type Scope map[string]string

func (c Collection) checkScope(scope Scope) error {
	for _, f := range c.ScopeFields {
		if _, ok := scope[f]; !ok {
			return ErrScopeRequired
		}
	}
	return nil
}
