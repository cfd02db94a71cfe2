package service

import (
	"context"
	"sync"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"
	"commerce-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes backing the service tests.

type fakeProductStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[primitive.ObjectID]*models.Product)}
}

func (f *fakeProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Code == product.Code {
			return apperr.Validation("a product with code %q already exists", product.Code)
		}
	}
	product.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProductStore) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProductStore) ListProducts(ctx context.Context, opts store.ProductListOptions) (*store.ProductPage, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	all := []models.Product{}
	for _, p := range f.products {
		if opts.Category == "" || p.Category == opts.Category {
			all = append(all, *p)
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if (opts.Sort == "asc" && all[j].Price < all[i].Price) ||
				(opts.Sort == "desc" && all[j].Price > all[i].Price) {
				all[i], all[j] = all[j], all[i]
			}
		}
	}

	total := int64(len(all))
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	start := (opts.Page - 1) * opts.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}

	return &store.ProductPage{
		Products:   all[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       opts.Page,
		HasPrev:    opts.Page > 1,
		HasNext:    opts.Page < totalPages,
	}, nil
}

func (f *fakeProductStore) UpdateProduct(ctx context.Context, id primitive.ObjectID, update *models.ProductUpdate) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.Code != nil {
		p.Code = *update.Code
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return apperr.NotFound("product not found")
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	return true, nil
}

type fakeUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperr.Validation("a user with email %q already exists", user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.LastConnection = now
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.Age != nil {
		u.Age = *update.Age
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) UpdateLastConnection(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.LastConnection = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) SetUserRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) AddUserDocument(ctx context.Context, id primitive.ObjectID, doc models.UserDocument) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.Documents = append(u.Documents, doc)
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.ResetToken = token
	u.ResetTokenExpires = expires
	return nil
}

func (f *fakeUserStore) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("reset token not found")
}

func (f *fakeUserStore) ClearResetToken(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Password = hashedPassword
	u.ResetToken = ""
	u.ResetTokenExpires = time.Time{}
	return nil
}

type fakeCartStore struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]*models.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (f *fakeCartStore) CreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	cart := &models.Cart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Lines:     []models.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.carts[cart.ID] = cart
	cp := *cart
	return &cp, nil
}

func (f *fakeCartStore) GetCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	cp := *cart
	cp.Lines = append([]models.CartLine{}, cart.Lines...)
	return &cp, nil
}

func (f *fakeCartStore) AddCartLine(ctx context.Context, id, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	found := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Lines = append(cart.Lines, models.CartLine{ProductID: productID, Quantity: quantity})
	}
	cp := *cart
	cp.Lines = append([]models.CartLine{}, cart.Lines...)
	return &cp, nil
}

func (f *fakeCartStore) RemoveCartLine(ctx context.Context, id, productID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	lines := []models.CartLine{}
	for _, line := range cart.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	cart.Lines = lines
	cp := *cart
	cp.Lines = append([]models.CartLine{}, cart.Lines...)
	return &cp, nil
}

func (f *fakeCartStore) ReplaceCartLines(ctx context.Context, id primitive.ObjectID, lines []models.CartLine) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	cart.Lines = append([]models.CartLine{}, lines...)
	cp := *cart
	cp.Lines = append([]models.CartLine{}, cart.Lines...)
	return &cp, nil
}

func (f *fakeCartStore) ClearCart(ctx context.Context, id primitive.ObjectID) (*models.Cart, error) {
	return f.ReplaceCartLines(ctx, id, []models.CartLine{})
}

type fakeTicketStore struct {
	mu      sync.RWMutex
	tickets map[primitive.ObjectID]*models.Ticket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[primitive.ObjectID]*models.Ticket)}
}

func (f *fakeTicketStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket.ID = primitive.NewObjectID()
	ticket.CreatedAt = time.Now().UTC()
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTicketStore) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, apperr.NotFound("ticket not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketStore) ListTicketsByPurchaser(ctx context.Context, purchaser string) ([]models.Ticket, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []models.Ticket{}
	for _, t := range f.tickets {
		if t.Purchaser == purchaser {
			out = append(out, *t)
		}
	}
	return out, nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu             sync.Mutex
	registered     []*models.UserRegisteredEvent
	resetRequested []*models.PasswordResetRequestedEvent
	ticketsCreated []*models.TicketCreatedEvent
}

func (f *fakePublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, event)
	return nil
}

func (f *fakePublisher) PublishPasswordResetRequested(ctx context.Context, event *models.PasswordResetRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetRequested = append(f.resetRequested, event)
	return nil
}

func (f *fakePublisher) PublishTicketCreated(ctx context.Context, event *models.TicketCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticketsCreated = append(f.ticketsCreated, event)
	return nil
}
