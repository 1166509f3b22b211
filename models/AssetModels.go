package models

import (
	"errors"
	"time"
)

const (
	AssetStatusPending      = "Pending"
	AssetStatusQuoting      = "Quoting"
	AssetStatusApproved     = "Approved"
	AssetStatusInProduction = "In Production"
	AssetStatusDelivered    = "Delivered"
)

// Asset represents the assets table. SourceText is the brief span an AI run
// cited as the origin of this asset; it drives highlighting and may be nil.
type Asset struct {
	AssetID            int       `json:"asset_id" example:"1"`
	ProjectID          int       `json:"project_id" example:"1"`
	Name               string    `json:"name" example:"Printing"`
	Specifications     string    `json:"specifications,omitempty" example:"4 roll-up banners, 85x200cm"`
	Timeline           *DateOnly `json:"timeline,omitempty" example:"2026-09-20"`
	Status             string    `json:"status" example:"Pending"`
	AssignedSupplierID *int      `json:"assigned_supplier_id,omitempty" example:"2"`
	SourceText         *string   `json:"source_text,omitempty" example:"need banners for the entrance"`
	CreatedAt          time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt          time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// IsValidAssetStatus reports whether s is one of the allowed statuses.
func IsValidAssetStatus(s string) bool {
	switch s {
	case AssetStatusPending, AssetStatusQuoting, AssetStatusApproved,
		AssetStatusInProduction, AssetStatusDelivered:
		return true
	}
	return false
}

func ValidateAssetInput(asset *Asset) error {
	if asset.Name == "" || asset.ProjectID == 0 {
		return errors.New("required fields cannot be null or empty")
	}
	if asset.Status == "" {
		asset.Status = AssetStatusPending
	}

	if !IsValidAssetStatus(asset.Status) {
		return errors.New("invalid asset status; allowed values are Pending, Quoting, Approved, In Production, Delivered")
	}

	return nil
}
