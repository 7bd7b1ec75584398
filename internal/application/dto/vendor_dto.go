package dto

import "time"

// VendorRequest entrada para crear o reemplazar un proveedor.
type VendorRequest struct {
	ID          string `json:"id" validate:"max=100"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	ContactName string `json:"contactName" validate:"max=200"`
	Phone       string `json:"phone" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"max=300"`
	TaxID       string `json:"taxId" validate:"max=50"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// VendorResponse salida de un proveedor.
type VendorResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	TaxID       string    `json:"taxId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
