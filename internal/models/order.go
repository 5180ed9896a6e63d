package models

import "time"

type Order struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatorID     uint       `gorm:"not null;index" json:"creator_id"`
	BuyerName     string     `gorm:"size:128" json:"buyer_name"`
	BuyerPhone    string     `gorm:"size:20" json:"buyer_phone"`
	ProductID     uint       `gorm:"not null;index" json:"product_id"`
	ProductTitle  string     `gorm:"size:255" json:"product_title"` // snapshot at checkout
	Quantity      int        `gorm:"not null" json:"quantity"`
	UnitPrice     int64      `gorm:"not null" json:"unit_price"`
	Total         int64      `gorm:"not null" json:"total"`
	PaymentStatus string     `gorm:"size:16;not null;index" json:"payment_status"` // pending, paid, failed, refunded
	DepositID     string     `gorm:"size:36;uniqueIndex;not null" json:"deposit_id"`
	ProviderRef   string     `gorm:"size:128" json:"provider_ref,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
