package store

import (
	"context"
	"errors"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateTicket inserts a purchase ticket. Tickets are insert-only; nothing
// in this store mutates or deletes them.
func (s *Store) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	ticket.CreatedAt = time.Now().UTC()

	res, err := s.tickets.InsertOne(ctx, ticket)
	if err != nil {
		return apperr.Storage(err, "failed to create ticket")
	}
	ticket.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetTicketByID retrieves a ticket by id
func (s *Store) GetTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("ticket not found")
	}
	if err != nil {
		return nil, apperr.Storage(err, "failed to get ticket")
	}
	return &ticket, nil
}

// ListTicketsByPurchaser retrieves tickets for a purchaser, newest first
func (s *Store) ListTicketsByPurchaser(ctx context.Context, purchaser string) ([]models.Ticket, error) {
	cursor, err := s.tickets.Find(ctx,
		bson.M{"purchaser": purchaser},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list tickets")
	}

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, apperr.Storage(err, "failed to decode tickets")
	}
	return tickets, nil
}
