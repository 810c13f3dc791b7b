package partner

import (
	"strings"
	"time"

	"github.com/pharmakart/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// IsValid checks if the status is a valid SupplierStatus
func (s SupplierStatus) IsValid() bool {
	return s == SupplierStatusActive || s == SupplierStatusInactive
}

// Supplier represents a pharmaceutical supplier
type Supplier struct {
	shared.BaseEntity
	Code        string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string         `gorm:"type:varchar(200);not null"`
	ContactName string         `gorm:"type:varchar(100)"`
	Phone       string         `gorm:"type:varchar(20)"`
	Email       string         `gorm:"type:varchar(254)"`
	Address     string         `gorm:"type:text"`
	GSTIN       string         `gorm:"type:varchar(15)"` // Indian GST identification number
	Status      SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes       string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(code, name string) (*Supplier, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}

	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Status:     SupplierStatusActive,
	}, nil
}

// UpdateContact updates the supplier's contact details
func (s *Supplier) UpdateContact(contactName, phone, email, address string) {
	s.ContactName = strings.TrimSpace(contactName)
	s.Phone = strings.TrimSpace(phone)
	s.Email = strings.TrimSpace(email)
	s.Address = strings.TrimSpace(address)
	s.UpdatedAt = time.Now()
}

// SetGSTIN sets the supplier's GST identification number
func (s *Supplier) SetGSTIN(gstin string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin != "" && len(gstin) != 15 {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be 15 characters")
	}
	s.GSTIN = gstin
	s.UpdatedAt = time.Now()
	return nil
}

// Activate marks the supplier as active
func (s *Supplier) Activate() {
	s.Status = SupplierStatusActive
	s.UpdatedAt = time.Now()
}

// Deactivate marks the supplier as inactive
// Inactive suppliers are excluded from new purchase orders; existing orders
// are unaffected
func (s *Supplier) Deactivate() {
	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// HasEmail returns true if a contact email is on file
func (s *Supplier) HasEmail() bool {
	return s.Email != ""
}

// CanDispatch returns true if a purchase order can be dispatched to this
// supplier (an email contact channel is required)
func (s *Supplier) CanDispatch() bool {
	return s.HasEmail()
}
