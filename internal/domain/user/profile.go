package user

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	RoleAdmin    = "admin"
	RoleStandard = "standard"
)

// Profile is the identity snapshot kept for each portal user.
type Profile struct {
	UID             string         `gorm:"column:uid;primaryKey;size:128" json:"uid"`
	Email           string         `gorm:"column:email;index" json:"email,omitempty"`
	Role            string         `gorm:"column:role;not null;default:standard" json:"role"`
	SupplierProfile datatypes.JSON `gorm:"column:supplier_profile" json:"supplierProfile,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Profile) TableName() string { return "user_profile" }

// SupplierSnapshot returns the supplier profile as a JSON object, "{}" when unset or malformed.
func (p *Profile) SupplierSnapshot() datatypes.JSON {
	if p == nil || len(p.SupplierProfile) == 0 {
		return datatypes.JSON("{}")
	}
	var obj map[string]any
	if err := json.Unmarshal(p.SupplierProfile, &obj); err != nil || obj == nil {
		return datatypes.JSON("{}")
	}
	return p.SupplierProfile
}

// Principal is an authenticated caller.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanAccess reports whether p may read or act on a record owned by ownerUID.
func (p Principal) CanAccess(ownerUID string) bool {
	return p.IsAdmin() || (p.UID != "" && p.UID == ownerUID)
}
