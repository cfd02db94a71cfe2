package service

import (
	"context"
	"time"

	"commerce-service/internal/models"
	"commerce-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store handles are injected explicitly so the services can run against
// the mongo store in production and in-memory fakes in tests.

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetProductByCode(ctx context.Context, code string) (*models.Product, error)
	ListProducts(ctx context.Context, opts store.ProductListOptions) (*store.ProductPage, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	UpdateLastConnection(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetUserRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	AddUserDocument(ctx context.Context, id primitive.ObjectID, doc models.UserDocument) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	ClearResetToken(ctx context.Context, id primitive.ObjectID, hashedPassword string) error
}

type CartStore interface {
	CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	GetCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error)
	AddCartLine(ctx context.Context, id, productID primitive.ObjectID, quantity int) (*models.Cart, error)
	RemoveCartLine(ctx context.Context, id, productID primitive.ObjectID) (*models.Cart, error)
	ReplaceCartLines(ctx context.Context, id primitive.ObjectID, lines []models.CartLine) (*models.Cart, error)
	ClearCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error)
}

type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error)
	ListTicketsByPurchaser(ctx context.Context, purchaser string) ([]models.Ticket, error)
}

// ProductCache is the read-cache surface the services depend on. A nil
// cache disables caching.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}

// EventPublisher is the domain-event surface. A nil publisher disables
// event emission; publish failures are logged and never fail the caller.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error
	PublishPasswordResetRequested(ctx context.Context, event *models.PasswordResetRequestedEvent) error
	PublishTicketCreated(ctx context.Context, event *models.TicketCreatedEvent) error
}
