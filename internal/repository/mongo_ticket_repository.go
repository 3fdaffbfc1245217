package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketsCollection is the Mongo collection holding ticket documents.
const TicketsCollection = "tickets"

var mongoSortFields = map[string]string{
	"raisedOn": "createdAt",
}

type mongoTicketRepository struct {
	coll *mongo.Collection
}

// NewMongoTicketRepository returns a repository backed by the tickets collection of db.
func NewMongoTicketRepository(db *mongo.Database) TicketRepository {
	return &mongoTicketRepository{coll: db.Collection(TicketsCollection)}
}

// EnsureTicketIndexes creates the unique identifier indexes and the list indexes.
func EnsureTicketIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TicketsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ticketId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_ticket_id")},
		{Keys: bson.D{{Key: "srNo", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_sr_no")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("status_created_at")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
	})
	return err
}

func (r *mongoTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	_, err := r.coll.InsertOne(ctx, ticket)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	current := ticket.Version
	next := *ticket
	next.Version = current + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"ticketId": ticket.TicketID, "version": current}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"ticketId": ticket.TicketID})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrVersionConflict
		}
		return ErrNotFound
	}
	ticket.Version = next.Version
	return nil
}

func (r *mongoTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.coll.FindOne(ctx, bson.M{"ticketId": ticketID}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeDecoded(&ticket)
	return &ticket, nil
}

func (r *mongoTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	field := ResolveSortField(filter.SortField)
	if mapped, ok := mongoSortFields[field]; ok {
		field = mapped
	}
	direction := -1
	if filter.SortOrder == SortAsc {
		direction = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "srNo", Value: direction}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := []domain.Ticket{}
	for cur.Next(ctx) {
		var ticket domain.Ticket
		if err := cur.Decode(&ticket); err != nil {
			return nil, err
		}
		normalizeDecoded(&ticket)
		result = append(result, ticket)
	}
	return result, cur.Err()
}

func (r *mongoTicketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, mongoFilter(filter))
}

func (r *mongoTicketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[domain.TicketStatus]int64)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[domain.TicketStatus(row.Status)] += row.Count
	}
	return counts, cur.Err()
}

func (r *mongoTicketRepository) ListTicketIDs(ctx context.Context) ([]string, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"ticketId": 1, "_id": 0}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var row struct {
			TicketID string `bson:"ticketId"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.TicketID)
	}
	return ids, cur.Err()
}

func (r *mongoTicketRepository) MaxSrNo(ctx context.Context) (int64, error) {
	var row struct {
		SrNo int64 `bson:"srNo"`
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "srNo", Value: -1}}).SetProjection(bson.M{"srNo": 1})
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	return row.SrNo, err
}

func (r *mongoTicketRepository) TrimStatusWhitespace(ctx context.Context) (int64, error) {
	filter := bson.M{"status": primitive.Regex{Pattern: `^\s|\s$`}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$status"}}}}}}}},
	}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func mongoFilter(filter TicketFilter) bson.M {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query["status"] = bson.M{"$in": statuses}
	}
	if filter.Category != nil {
		query["category"] = string(*filter.Category)
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(*filter.SearchTerm)), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"subject": pattern},
			bson.M{"description": pattern},
			bson.M{"ticketId": pattern},
			bson.M{"subCategory": pattern},
		}
	}
	return query
}

func normalizeDecoded(ticket *domain.Ticket) {
	ticket.Documents = nonNilDocuments(ticket.Documents)
	if ticket.AuditTrail == nil {
		ticket.AuditTrail = []domain.AuditEntry{}
	}
	for i := range ticket.AuditTrail {
		ticket.AuditTrail[i].Documents = nonNilDocuments(ticket.AuditTrail[i].Documents)
	}
	ticket.Tags = nonNilStrings(ticket.Tags)
	ticket.RelatedTickets = nonNilStrings(ticket.RelatedTickets)
}
