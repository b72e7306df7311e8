package model

import "time"

// Product types.  The type drives the default legal disclaimer applied when
// a product is created without one.
const (
    ProductTypeSupplement = "supplement"
    ProductTypeResearch   = "research"
)

// Default disclaimers per product type.
const (
    DisclaimerResearch = "This product is for laboratory research use only. " +
        "Not for human or veterinary consumption. This product is not a drug, " +
        "supplement, or cosmetic and has not been evaluated by the FDA."
    DisclaimerSupplement = "*These statements have not been evaluated by the " +
        "Food and Drug Administration. This product is not intended to " +
        "diagnose, treat, cure, or prevent any disease."
)

// Product is a catalog entry.  Its primary key is an external string slug
// (e.g. "prime-peptide-protect") rather than a numeric id, because product
// ids are shared with the storefront frontend and referenced in CSV imports.
// Every product owns one or more dosage options, each priced independently
// in USD and EUR.
type Product struct {
    ID              string         `json:"id"`               // products.id
    Name            string         `json:"name"`             // products.name
    Description     *string        `json:"description"`      // products.description (nullable)
    Category        string         `json:"category"`         // products.category
    ProductType     string         `json:"product_type"`     // products.product_type
    Disclaimer      string         `json:"disclaimer"`       // products.disclaimer
    Image           *string        `json:"image"`            // products.image (nullable)
    SupplementFacts *string        `json:"supplement_facts"` // products.supplement_facts (nullable)
    InStock         bool           `json:"in_stock"`         // products.in_stock
    DosageOptions   []DosageOption `json:"dosage_options"`   // attached from product_dosages
    CreatedAt       time.Time      `json:"created_at"`       // products.created_at
    UpdatedAt       time.Time      `json:"updated_at"`       // products.updated_at
}

// DosageOption is one priced variant of a product.
type DosageOption struct {
    Size     string  `json:"size"`      // product_dosages.size
    Capsules *int    `json:"capsules"`  // product_dosages.capsules (nullable)
    PriceUSD float64 `json:"price_usd"` // product_dosages.price_usd
    PriceEUR float64 `json:"price_eur"` // product_dosages.price_eur
}

// DefaultDisclaimer returns the disclaimer text applied when a product of
// the given type is created without one.
func DefaultDisclaimer(productType string) string {
    if productType == ProductTypeResearch {
        return DisclaimerResearch
    }
    return DisclaimerSupplement
}
