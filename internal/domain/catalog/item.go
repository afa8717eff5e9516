package catalog

import (
	"strings"
	"time"

	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the status of an item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// Item is a sellable catalog entry. Items reference at most one category;
// the reference is cleared when that category is deleted.
type Item struct {
	shared.TenantAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_item_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Barcode       string          `gorm:"type:varchar(100);index"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        ItemStatus      `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new active item
func NewItem(tenantID uuid.UUID, code, name string) (*Item, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Item code must be between 1 and 50 characters")
	}
	if name == "" || len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name must be between 1 and 255 characters")
	}

	return &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                "pcs",
		PurchasePrice:       decimal.Zero,
		SellingPrice:        decimal.Zero,
		Status:              ItemStatusActive,
	}, nil
}

// AssignCategory places the item under a category
func (i *Item) AssignCategory(categoryID uuid.UUID) {
	i.CategoryID = &categoryID
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// ClearCategory removes the item's category reference
func (i *Item) ClearCategory() {
	i.CategoryID = nil
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// SetPrices sets the purchase and selling prices
func (i *Item) SetPrices(purchase, selling decimal.Decimal) error {
	if purchase.IsNegative() || selling.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	i.PurchasePrice = purchase
	i.SellingPrice = selling
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsActive returns true if the item is active
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}
