package service

import (
	"context"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"
	"commerce-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PurchaseService reconciles cart contents against live stock and issues
// tickets for the lines it could fulfill.
type PurchaseService struct {
	carts     CartStore
	products  ProductStore
	tickets   TicketStore
	cache     ProductCache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(carts CartStore, products ProductStore, tickets TicketStore, cache ProductCache, publisher EventPublisher) *PurchaseService {
	return &PurchaseService{
		carts:     carts,
		products:  products,
		tickets:   tickets,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PurchaseResult reports the outcome of a purchase attempt. Ticket is nil
// when no line could be fulfilled.
type PurchaseResult struct {
	Ticket         *models.Ticket      `json:"ticket,omitempty"`
	SucceededLines []models.TicketLine `json:"succeeded_lines"`
	FailedLines    []models.CartLine   `json:"failed_lines"`
	Amount         float64             `json:"amount"`
}

// Purchase processes the cart's lines in order. Each line is fulfilled
// independently: the stock decrement is a single conditional update, so a
// line either reserves its full quantity or fails without touching stock.
// Failed lines are written back as the cart's new contents; succeeded lines
// produce a ticket. When every line fails the result still carries the
// failed lines alongside a BusinessRule error.
func (s *PurchaseService) Purchase(ctx context.Context, cartID primitive.ObjectID, purchaser string) (*PurchaseResult, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.Purchase")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PurchaseLatency.Observe(time.Since(start).Seconds())
	}()

	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		util.PurchasesTotal.WithLabelValues("empty_cart").Inc()
		return nil, apperr.BusinessRule("cart is empty")
	}

	result := &PurchaseResult{
		SucceededLines: []models.TicketLine{},
		FailedLines:    []models.CartLine{},
	}

	for _, line := range cart.Lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				util.PurchaseLinesFailedTotal.WithLabelValues("product_missing").Inc()
				result.FailedLines = append(result.FailedLines, line)
				continue
			}
			return nil, err
		}

		ok, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			util.PurchaseLinesFailedTotal.WithLabelValues("insufficient_stock").Inc()
			result.FailedLines = append(result.FailedLines, line)
			continue
		}

		s.invalidate(ctx, line.ProductID)
		result.SucceededLines = append(result.SucceededLines, models.TicketLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		result.Amount += product.Price * float64(line.Quantity)
	}

	// The cart keeps exactly what could not be bought.
	if len(result.FailedLines) > 0 {
		if _, err := s.carts.ReplaceCartLines(ctx, cartID, result.FailedLines); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.carts.ClearCart(ctx, cartID); err != nil {
			return nil, err
		}
	}

	if len(result.SucceededLines) == 0 {
		util.PurchasesTotal.WithLabelValues("failed").Inc()
		return result, apperr.BusinessRule("no cart line could be fulfilled")
	}

	ticket := &models.Ticket{
		Code:      uuid.New().String(),
		Purchaser: purchaser,
		Amount:    result.Amount,
		Lines:     result.SucceededLines,
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	result.Ticket = ticket

	util.TicketsCreatedTotal.Inc()
	util.TicketAmount.Observe(ticket.Amount)
	if len(result.FailedLines) > 0 {
		util.PurchasesTotal.WithLabelValues("partial").Inc()
	} else {
		util.PurchasesTotal.WithLabelValues("success").Inc()
	}

	s.logger.Info("Purchase completed",
		zap.String("cart_id", cartID.Hex()),
		zap.String("ticket_id", ticket.ID.Hex()),
		zap.Float64("amount", ticket.Amount),
		zap.Int("succeeded", len(result.SucceededLines)),
		zap.Int("failed", len(result.FailedLines)))

	if s.publisher != nil {
		event := &models.TicketCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTicketCreated,
				Timestamp: time.Now(),
			},
			TicketID:  ticket.ID.Hex(),
			Code:      ticket.Code,
			Purchaser: ticket.Purchaser,
			Amount:    ticket.Amount,
			Lines:     ticket.Lines,
		}
		if err := s.publisher.PublishTicketCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish TicketCreated event", zap.Error(err))
		}
	}

	return result, nil
}

// GetTicket retrieves a ticket by id
func (s *PurchaseService) GetTicket(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	return s.tickets.GetTicketByID(ctx, id)
}

// ListTickets retrieves the purchase history for a purchaser
func (s *PurchaseService) ListTickets(ctx context.Context, purchaser string) ([]models.Ticket, error) {
	return s.tickets.ListTicketsByPurchaser(ctx, purchaser)
}

func (s *PurchaseService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id.Hex()); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", id.Hex()),
			zap.Error(err))
	}
}
