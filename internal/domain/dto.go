package domain

import (
	"github.com/google/uuid"
)

// PaginatedResponse wraps list results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Pricing

type ProcessRateRequest struct {
	PricingRule string  `json:"pricingRule" validate:"required,oneof=PER_AREA PER_EDGE FLAT"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Unit        string  `json:"unit,omitempty" validate:"max=20"`
}

// PriceLineRequest is a stateless line calculation. Organization settings
// are not applied; the caller passes min charge and wastage explicitly.
type PriceLineRequest struct {
	UnitPrice      float64              `json:"unitPrice" validate:"gte=0"`
	LengthMM       float64              `json:"lengthMm" validate:"gt=0"`
	WidthMM        float64              `json:"widthMm" validate:"gt=0"`
	Quantity       int                  `json:"quantity" validate:"gt=0"`
	Processes      []ProcessRateRequest `json:"processes" validate:"dive"`
	MinCharge      float64              `json:"minCharge" validate:"gte=0"`
	WastagePercent float64              `json:"wastagePercent" validate:"gte=0,lte=100"`
	Edges          int                  `json:"edges,omitempty" validate:"gte=0"`
}

type LineResultDTO struct {
	AreaSqm     float64 `json:"areaSqm"`
	ProcessCost float64 `json:"processCost"`
	LineTotal   float64 `json:"lineTotal"`
}

type TaxSplitRequest struct {
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
	Mode     string  `json:"mode" validate:"required,oneof=INTRA INTER"`
}

type TaxSplitDTO struct {
	Mode string  `json:"mode"`
	Tax  float64 `json:"tax"`
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
}

// Quotes

type QuoteLineRequest struct {
	Description string      `json:"description" validate:"max=500"`
	UnitPrice   float64     `json:"unitPrice" validate:"gte=0"`
	LengthMM    float64     `json:"lengthMm" validate:"gt=0"`
	WidthMM     float64     `json:"widthMm" validate:"gt=0"`
	Quantity    int         `json:"quantity" validate:"gt=0"`
	ProcessIDs  []uuid.UUID `json:"processIds"`
	Edges       int         `json:"edges,omitempty" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	CustomerName string             `json:"customerName" validate:"required,max=200"`
	TaxMode      string             `json:"taxMode" validate:"required,oneof=INTRA INTER"`
	Lines        []QuoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type QuotePreviewDTO struct {
	Lines      []LineResultDTO `json:"lines"`
	Subtotal   float64         `json:"subtotal"`
	Tax        TaxSplitDTO     `json:"tax"`
	GrandTotal float64         `json:"grandTotal"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Position    int       `json:"position"`
	Description string    `json:"description,omitempty"`
	LengthMM    float64   `json:"lengthMm"`
	WidthMM     float64   `json:"widthMm"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	AreaSqm     float64   `json:"areaSqm"`
	ProcessCost float64   `json:"processCost"`
	LineTotal   float64   `json:"lineTotal"`
}

type QuoteDTO struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	CustomerName string         `json:"customerName"`
	Status       string         `json:"status"`
	Subtotal     float64        `json:"subtotal"`
	Tax          TaxSplitDTO    `json:"tax"`
	GrandTotal   float64        `json:"grandTotal"`
	Items        []QuoteItemDTO `json:"items,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}

type OrderDTO struct {
	ID           uuid.UUID  `json:"id"`
	Number       string     `json:"number"`
	QuoteID      *uuid.UUID `json:"quoteId,omitempty"`
	CustomerName string     `json:"customerName"`
	Status       string     `json:"status"`
	TaxMode      string     `json:"taxMode"`
	Subtotal     float64    `json:"subtotal"`
	TaxTotal     float64    `json:"taxTotal"`
	GrandTotal   float64    `json:"grandTotal"`
	CreatedAt    string     `json:"createdAt"`
}

type InvoiceDTO struct {
	ID           uuid.UUID   `json:"id"`
	Number       string      `json:"number"`
	OrderID      *uuid.UUID  `json:"orderId,omitempty"`
	CustomerName string      `json:"customerName"`
	Subtotal     float64     `json:"subtotal"`
	Tax          TaxSplitDTO `json:"tax"`
	GrandTotal   float64     `json:"grandTotal"`
	CreatedAt    string      `json:"createdAt"`
}

// Master data

type ProcessDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PricingRule string    `json:"pricingRule"`
	Rate        float64   `json:"rate"`
	Unit        string    `json:"unit,omitempty"`
	IsActive    bool      `json:"isActive"`
}

type CreateProcessRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	PricingRule string  `json:"pricingRule" validate:"required,oneof=PER_AREA PER_EDGE FLAT"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Unit        string  `json:"unit,omitempty" validate:"max=20"`
}

type UpdateProcessRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	PricingRule string  `json:"pricingRule" validate:"required,oneof=PER_AREA PER_EDGE FLAT"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Unit        string  `json:"unit,omitempty" validate:"max=20"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type TaxRatesDTO struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
}

type UpdateTaxRatesRequest struct {
	CGST float64 `json:"cgst" validate:"gte=0,lte=100"`
	SGST float64 `json:"sgst" validate:"gte=0,lte=100"`
	IGST float64 `json:"igst" validate:"gte=0,lte=100"`
}

type OrganizationPricingDTO struct {
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	StateCode      string    `json:"stateCode,omitempty"`
	MinCharge      float64   `json:"minCharge"`
	WastagePercent float64   `json:"wastagePercent"`
}

type UpdateOrganizationPricingRequest struct {
	StateCode      string  `json:"stateCode" validate:"omitempty,len=2"`
	MinCharge      float64 `json:"minCharge" validate:"gte=0"`
	WastagePercent float64 `json:"wastagePercent" validate:"gte=0,lte=100"`
}

// Sequences

type NumberSequenceDTO struct {
	DocType    string `json:"docType"`
	Pattern    string `json:"pattern"`
	NextNumber int    `json:"nextNumber"`
	Year       int    `json:"year"`
	UpdatedAt  string `json:"updatedAt"`
}

// SequenceRepairStatus is the outcome of repairing one document type
type SequenceRepairStatus string

const (
	SequenceRepaired SequenceRepairStatus = "repaired"
	SequenceFailed   SequenceRepairStatus = "failed"
)

// SequenceRepairResult reports one document type of a repair-all run.
// NextNumber is zero when Status is failed.
type SequenceRepairResult struct {
	DocType    DocType              `json:"docType"`
	NextNumber int                  `json:"nextNumber,omitempty"`
	Status     SequenceRepairStatus `json:"status"`
	Error      string               `json:"error,omitempty"`
	Skipped    int                  `json:"skipped,omitempty"`
}
