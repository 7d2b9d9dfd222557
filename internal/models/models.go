package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser    = "user"
	RolePremium = "premium"
	RoleAdmin   = "admin"
)

// AdminOwner marks products that belong to no user account.
const AdminOwner = "admin"

type User struct {
	ID             uuid.UUID      `gorm:"primaryKey"                json:"id"`
	Email          string         `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash   string         `gorm:"not null"                  json:"-"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Age            int            `json:"age"`
	ProfileImage   string         `gorm:"default:/uploads/default.jpg" json:"profile_image"`
	Role           string         `gorm:"not null;default:user"     json:"role"`
	Documents      []UserDocument `gorm:"foreignKey:UserID"         json:"documents,omitempty"`
	LastConnection time.Time      `json:"last_connection"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type UserDocument struct {
	ID        uuid.UUID `gorm:"primaryKey"                               json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_user_document;not null"   json:"user_id"`
	Name      string    `gorm:"uniqueIndex:idx_user_document;not null"   json:"name"`
	Reference string    `gorm:"not null"                                 json:"reference"`
}

func (d *UserDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID       `gorm:"primaryKey"            json:"id"`
	Name        string          `gorm:"not null"              json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Stock       int             `gorm:"not null;check:stock>=0" json:"stock"`
	Category    string          `gorm:"index"                 json:"category"`
	Status      bool            `gorm:"default:true"          json:"status"`
	Thumbnail   string          `json:"thumbnail"`
	Owner       string          `gorm:"index;default:admin"   json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Cart struct {
	ID     uuid.UUID  `gorm:"primaryKey"           json:"id"`
	UserID uuid.UUID  `gorm:"uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID"    json:"items"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                             json:"id"`
	CartID    uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null"  json:"cart_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null"  json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity>0"              json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID"                   json:"product,omitempty"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Ticket is the immutable purchase receipt. Rows are never updated or
// deleted by normal flows.
type Ticket struct {
	ID               uuid.UUID       `gorm:"primaryKey"            json:"id"`
	Code             string          `gorm:"uniqueIndex;not null"  json:"code"`
	PurchaseDatetime time.Time       `gorm:"not null"              json:"purchase_datetime"`
	Amount           decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	PurchaserEmail   string          `gorm:"index;not null"        json:"purchaser"`
	UserID           uuid.UUID       `gorm:"index"                 json:"user_id"`
	Items            []TicketItem    `gorm:"foreignKey:TicketID"   json:"items"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TicketItem snapshots a purchased line item at decrement time, so the
// receipt survives later product edits.
type TicketItem struct {
	ID          uuid.UUID       `gorm:"primaryKey"            json:"id"`
	TicketID    uuid.UUID       `gorm:"index;not null"        json:"ticket_id"`
	ProductID   uuid.UUID       `gorm:"not null"              json:"product_id"`
	ProductName string          `gorm:"not null"              json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	Quantity    int             `gorm:"not null"              json:"quantity"`
}

func (i *TicketItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Message struct {
	ID        uuid.UUID `gorm:"primaryKey"     json:"id"`
	Sender    string    `gorm:"not null"       json:"sender"`
	Body      string    `gorm:"not null"       json:"body"`
	CreatedAt time.Time `gorm:"index"          json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uuid.UUID `gorm:"index;not null"       json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"default:false"        json:"revoked"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uuid.UUID `gorm:"index;not null"       json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Used      bool      `gorm:"default:false"        json:"used"`
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
