// Package dto shapes stored records into response-safe projections.
// Sensitive fields (password, reset token) never appear here.
package dto

import (
	"fmt"
	"time"

	"commerce-service/internal/models"
	"commerce-service/internal/service"
)

// Availability labels derived from stock count
const (
	AvailabilityOut  = "out of stock"
	AvailabilityLow  = "low stock"
	AvailabilityFull = "available"
)

const lowStockThreshold = 5

// AvailabilityLabel maps a stock count to a human-readable label
func AvailabilityLabel(stock int) string {
	switch {
	case stock == 0:
		return AvailabilityOut
	case stock < lowStockThreshold:
		return AvailabilityLow
	default:
		return AvailabilityFull
	}
}

// FormatPrice renders a price with two decimal places
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// Product is the detail projection of a product
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Stock        int       `json:"stock"`
	Category     string    `json:"category"`
	Status       bool      `json:"status"`
	Thumbnails   []string  `json:"thumbnails"`
	Code         string    `json:"code"`
	Availability string    `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewProduct builds the detail projection
func NewProduct(p *models.Product) *Product {
	thumbnails := p.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	return &Product{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Description:  p.Description,
		Price:        FormatPrice(p.Price),
		Stock:        p.Stock,
		Category:     p.Category,
		Status:       p.Status,
		Thumbnails:   thumbnails,
		Code:         p.Code,
		Availability: AvailabilityLabel(p.Stock),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProductSummary is the compact projection used in listings
type ProductSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Category     string `json:"category"`
	Availability string `json:"availability"`
}

// NewProductSummary builds the listing projection
func NewProductSummary(p *models.Product) *ProductSummary {
	return &ProductSummary{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Price:        FormatPrice(p.Price),
		Category:     p.Category,
		Availability: AvailabilityLabel(p.Stock),
	}
}

// ProductList wraps a listing page with navigation metadata
type ProductList struct {
	Payload    []*ProductSummary `json:"payload"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	HasPrev    bool              `json:"hasPrevPage"`
	HasNext    bool              `json:"hasNextPage"`
	PrevLink   string            `json:"prevLink"`
	NextLink   string            `json:"nextLink"`
}

// NewProductList builds the listing envelope
func NewProductList(result *service.ProductListResult) *ProductList {
	payload := make([]*ProductSummary, 0, len(result.Products))
	for i := range result.Products {
		payload = append(payload, NewProductSummary(&result.Products[i]))
	}
	return &ProductList{
		Payload:    payload,
		Total:      result.Total,
		TotalPages: result.TotalPages,
		Page:       result.Page,
		HasPrev:    result.HasPrev,
		HasNext:    result.HasNext,
		PrevLink:   result.PrevLink,
		NextLink:   result.NextLink,
	}
}

// User is the response-safe projection of a user
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Age            int       `json:"age,omitempty"`
	CartID         string    `json:"cart_id"`
	LastConnection time.Time `json:"last_connection"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser builds the user projection, stripping credentials
func NewUser(u *models.User) *User {
	return &User{
		ID:             u.ID.Hex(),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FirstName + " " + u.LastName,
		Email:          u.Email,
		Role:           u.Role,
		Age:            u.Age,
		CartID:         u.CartID.Hex(),
		LastConnection: u.LastConnection,
		CreatedAt:      u.CreatedAt,
	}
}

// NewUserList builds user projections for list responses
func NewUserList(users []models.User) []*User {
	out := make([]*User, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}
	return out
}

// CartLine is a resolved cart line with its subtotal
type CartLine struct {
	Product   *Product `json:"product"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Subtotal  string   `json:"subtotal,omitempty"`
}

// Cart is the projection of a resolved cart
type Cart struct {
	ID     string      `json:"id"`
	UserID string      `json:"user_id"`
	Lines  []*CartLine `json:"lines"`
	Total  string      `json:"total"`
}

// NewCart builds the cart projection. Lines whose product has vanished keep
// the raw reference with a nil product.
func NewCart(resolved *service.ResolvedCart) *Cart {
	lines := make([]*CartLine, 0, len(resolved.Lines))
	var total float64
	for _, line := range resolved.Lines {
		dtoLine := &CartLine{
			ProductID: line.ProductID.Hex(),
			Quantity:  line.Quantity,
		}
		if line.Product != nil {
			dtoLine.Product = NewProduct(line.Product)
			subtotal := line.Product.Price * float64(line.Quantity)
			dtoLine.Subtotal = FormatPrice(subtotal)
			total += subtotal
		}
		lines = append(lines, dtoLine)
	}
	return &Cart{
		ID:     resolved.Cart.ID.Hex(),
		UserID: resolved.Cart.UserID.Hex(),
		Lines:  lines,
		Total:  FormatPrice(total),
	}
}

// TicketLine is one fulfilled line on a ticket
type TicketLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Ticket is the projection of a purchase ticket
type Ticket struct {
	ID        string        `json:"id"`
	Code      string        `json:"code"`
	Purchaser string        `json:"purchaser"`
	Amount    string        `json:"amount"`
	Lines     []*TicketLine `json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewTicket builds the ticket projection
func NewTicket(t *models.Ticket) *Ticket {
	lines := make([]*TicketLine, 0, len(t.Lines))
	for _, line := range t.Lines {
		lines = append(lines, &TicketLine{
			ProductID: line.ProductID.Hex(),
			Quantity:  line.Quantity,
			UnitPrice: FormatPrice(line.UnitPrice),
		})
	}
	return &Ticket{
		ID:        t.ID.Hex(),
		Code:      t.Code,
		Purchaser: t.Purchaser,
		Amount:    FormatPrice(t.Amount),
		Lines:     lines,
		CreatedAt: t.CreatedAt,
	}
}
