package gateway

// Item is a transient copy of an inventory item owned by the API.
type Item struct {
	ID           int     `json:"itemID"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	SupplierID   int     `json:"supplierID"`
	SupplierName string  `json:"supplierName,omitempty"`
	ImagePath    string  `json:"imagePath,omitempty"`
}

// Supplier is reference data for supplier pickers. The API serialises it
// with PascalCase keys.
type Supplier struct {
	UserID   int    `json:"UserID"`
	Username string `json:"Username"`
}

// Page is one page of a paged item listing.
type Page struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"totalCount"`
}

// ItemQuery selects a page of items. PageNumber is 1-based.
type ItemQuery struct {
	PageNumber  int
	PageSize    int
	SearchTerm  string
	SearchField string
}

// Image is a file attached to an item create/update.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ItemInput is the multipart payload for item create and update.
type ItemInput struct {
	Name       string
	Price      float64
	Quantity   int
	SupplierID int
	Image      *Image
}

// SupplierUpdate is the partial update a supplier may make. Both fields
// are always sent.
type SupplierUpdate struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// StockLevel is one row of the least-stock items report.
type StockLevel struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// SupplierStock is one row of the least-stocked suppliers report.
type SupplierStock struct {
	Username      string `json:"username"`
	TotalQuantity int    `json:"totalQuantity"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}
