package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a product in the catalog
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	Status      bool               `bson:"status" json:"status"`
	Thumbnails  []string           `bson:"thumbnails" json:"thumbnails"`
	Code        string             `bson:"code" json:"code"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProductUpdate carries a partial product update; nil fields are left as-is.
type ProductUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Status      *bool     `json:"status,omitempty"`
	Thumbnails  *[]string `json:"thumbnails,omitempty"`
	Code        *string   `json:"code,omitempty"`
}

// User roles
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RolePremium = "premium"
)

// Document names required before a premium upgrade
var RequiredPremiumDocuments = []string{"identification", "proofOfAddress", "accountStatement"}

// UserDocument is an uploaded document attached to a user
type UserDocument struct {
	Name      string `bson:"name" json:"name"`
	Reference string `bson:"reference" json:"reference"`
	Status    string `bson:"status" json:"status"`
}

// User represents a registered user. Password and reset fields are never
// serialized to JSON.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName         string             `bson:"first_name" json:"first_name"`
	LastName          string             `bson:"last_name" json:"last_name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password" json:"-"`
	Role              string             `bson:"role" json:"role"`
	Age               int                `bson:"age,omitempty" json:"age,omitempty"`
	CartID            primitive.ObjectID `bson:"cart_id" json:"cart_id"`
	Documents         []UserDocument     `bson:"documents" json:"documents"`
	LastConnection    time.Time          `bson:"last_connection" json:"last_connection"`
	ResetToken        string             `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpires time.Time          `bson:"reset_token_expires,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserUpdate carries a partial user update; nil fields are left as-is.
type UserUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Age       *int    `json:"age,omitempty"`
}

// CartLine is a (product reference, quantity) pair inside a cart
type CartLine struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds the ordered line items of a single user
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Lines     []CartLine         `bson:"lines" json:"lines"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ResolvedCartLine is a cart line joined with its product data. Product is
// nil when the referenced product no longer exists.
type ResolvedCartLine struct {
	Product   *Product           `json:"product"`
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
}

// TicketLine records one fulfilled line at purchase time
type TicketLine struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
}

// Ticket is the immutable record of a completed purchase
type Ticket struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"`
	Purchaser string             `bson:"purchaser" json:"purchaser"`
	Amount    float64            `bson:"amount" json:"amount"`
	Lines     []TicketLine       `bson:"lines" json:"lines"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
