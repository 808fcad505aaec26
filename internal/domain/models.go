package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/glassline/erp-api/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not set one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DocType identifies a numbered document series
type DocType string

const (
	DocTypeQuote   DocType = "QUOTE"
	DocTypeOrder   DocType = "ORDER"
	DocTypeInvoice DocType = "INVOICE"
)

// AllDocTypes returns the document types in repair order
func AllDocTypes() []DocType {
	return []DocType{DocTypeQuote, DocTypeOrder, DocTypeInvoice}
}

// IsValid reports whether t is a known document type
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeQuote, DocTypeOrder, DocTypeInvoice:
		return true
	}
	return false
}

// Letters returns the leading letters of document numbers of this type
func (t DocType) Letters() string {
	switch t {
	case DocTypeQuote:
		return "Q"
	case DocTypeOrder:
		return "O"
	case DocTypeInvoice:
		return "INV"
	default:
		return ""
	}
}

// NumberPrefix returns the year-scoped prefix, e.g. "Q2024-"
func (t DocType) NumberPrefix(year int) string {
	return fmt.Sprintf("%s%d-", t.Letters(), year)
}

// DefaultPattern returns the pattern stored on newly created sequences
func (t DocType) DefaultPattern() string {
	return t.Letters() + "{YYYY}-{####}"
}

// FormatDocumentNumber renders a document number, e.g. "Q2024-0008".
// Counters above 9999 are rendered without truncation.
func FormatDocumentNumber(t DocType, year, seq int) string {
	return fmt.Sprintf("%s%04d", t.NumberPrefix(year), seq)
}

// Organization is a tenant. Pricing settings apply to every line it quotes.
type Organization struct {
	BaseModel
	Name           string          `gorm:"type:varchar(200);not null"`
	StateCode      string          `gorm:"type:varchar(2)"`
	MinCharge      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	WastagePercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// Process is a priced fabrication step offered by an organization
type Process struct {
	BaseModel
	OrganizationID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name           string              `gorm:"type:varchar(200);not null"`
	PricingRule    pricing.PricingRule `gorm:"type:varchar(20);not null"`
	Rate           decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0"`
	Unit           string              `gorm:"type:varchar(20)"`
	IsActive       bool                `gorm:"not null;default:true"`
}

// ToRate converts the process to its pricing representation
func (p *Process) ToRate() pricing.ProcessRate {
	return pricing.ProcessRate{Rule: p.PricingRule, Rate: p.Rate, Unit: p.Unit}
}

// TaxType is a GST component
type TaxType string

const (
	TaxTypeCGST TaxType = "CGST"
	TaxTypeSGST TaxType = "SGST"
	TaxTypeIGST TaxType = "IGST"
)

// TaxRate stores the configured percentage for one GST component
type TaxRate struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tax_rates_org_type"`
	TaxType        TaxType         `gorm:"type:varchar(10);not null;uniqueIndex:idx_tax_rates_org_type"`
	Percent        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// NumberSequence holds the next document number for an organization and
// document type. Year is the calendar year NextNumber belongs to; issuance
// restarts at 1 when the year changes.
type NumberSequence struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_number_sequences_org_doc"`
	DocType        DocType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_number_sequences_org_doc"`
	Pattern        string    `gorm:"type:varchar(50);not null"`
	NextNumber     int       `gorm:"not null;default:1"`
	Year           int       `gorm:"not null"`
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusOpen      QuoteStatus = "open"
	QuoteStatusConverted QuoteStatus = "converted"
)

// Quote is a priced offer to a customer
type Quote struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quotes_org_number"`
	Number         string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_quotes_org_number"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	Status         QuoteStatus     `gorm:"type:varchar(20);not null"`
	TaxMode        pricing.TaxMode `gorm:"type:varchar(10);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	SGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	IGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Items          []QuoteItem     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteItem is one priced glass panel line of a quote
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500)"`
	LengthMM    decimal.Decimal `gorm:"column:length_mm;type:decimal(10,2);not null"`
	WidthMM     decimal.Decimal `gorm:"column:width_mm;type:decimal(10,2);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	AreaSqm     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ProcessCost decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusInvoiced OrderStatus = "invoiced"
)

// Order is a confirmed quote
type Order struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_org_number"`
	Number         string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_orders_org_number"`
	QuoteID        *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null"`
	TaxMode        pricing.TaxMode `gorm:"type:varchar(10);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// Invoice bills an order
type Invoice struct {
	BaseModel
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_org_number"`
	Number         string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoices_org_number"`
	OrderID        *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	TaxMode        pricing.TaxMode `gorm:"type:varchar(10);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	SGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	IGST           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// ParseDocumentSuffix extracts the counter from a number made of prefix
// followed by exactly four digits. ok is false for any other shape.
func ParseDocumentSuffix(prefix, number string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	rest := number[len(prefix):]
	if len(rest) != 4 {
		return 0, false
	}
	n := 0
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
