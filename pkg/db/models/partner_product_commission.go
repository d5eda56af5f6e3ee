package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerProductCommission snapshots a product assignment with its computed
// final rate. The set for a partner is replaced wholesale on assignment.
type PartnerProductCommission struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerID          uuid.UUID       `gorm:"column:partner_id;type:uuid;not null;index" json:"partner_id"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName        string          `gorm:"column:product_name;not null" json:"product_name"`
	BaseCommissionRate decimal.Decimal `gorm:"column:base_commission_rate;type:numeric(6,3);not null" json:"base_commission_rate"`
	CustomMargin       decimal.Decimal `gorm:"column:custom_margin;type:numeric(6,3);not null" json:"custom_margin"`
	FinalRate          decimal.Decimal `gorm:"column:final_rate;type:numeric(6,3);not null" json:"final_rate"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
