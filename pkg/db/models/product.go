package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the commissionable catalog entry partners are assigned to.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU                string          `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name               string          `gorm:"column:name;not null" json:"name"`
	Category           string          `gorm:"column:category;not null" json:"category"`
	Tags               pq.StringArray  `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]" json:"tags"`
	BaseCommissionRate decimal.Decimal `gorm:"column:base_commission_rate;type:numeric(6,3);not null" json:"base_commission_rate"`
	Eligible           bool            `gorm:"column:eligible;not null;default:true" json:"eligible"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
