package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
)

type PurchaseService struct {
	Repo   *repo.GormRepo
	Mailer Mailer
	Events EventPublisher
}

type UnavailableItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Requested int       `json:"requested"`
	Stock     int       `json:"stock"`
}

type PurchaseResult struct {
	Ticket      *models.Ticket    `json:"ticket"`
	Unavailable []UnavailableItem `json:"unavailable_products"`
}

// Purchase checks out a cart. Each line item is settled with a single
// conditional decrement (stock := stock - qty only while stock >= qty),
// so two concurrent purchases can never jointly over-sell a product;
// the loser of the race sees its item reported as unavailable. When no
// item is purchasable the cart is left untouched and no ticket is
// created, which is not an error.
func (s *PurchaseService) Purchase(ctx context.Context, cartID, purchaserID uuid.UUID) (*PurchaseResult, error) {
	l := logging.FromContext(ctx).With("svc", "purchase", "cart_id", cartID)

	cart, err := s.Repo.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return nil, err
	}

	purchaser, err := s.Repo.GetUser(ctx, purchaserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", purchaserID, ErrNotFound)
		}
		return nil, err
	}

	var (
		total       decimal.Decimal
		ticketItems []models.TicketItem
		purchased   []uuid.UUID
		unavailable []UnavailableItem
	)

	for _, item := range cart.Items {
		if item.Product == nil {
			// Product was hard-deleted while referenced by the cart.
			unavailable = append(unavailable, UnavailableItem{
				ProductID: item.ProductID,
				Requested: item.Quantity,
			})
			continue
		}

		ok, err := s.Repo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The preloaded stock may predate a concurrent decrement;
			// report what is actually left.
			stock := 0
			if current, gerr := s.Repo.GetProduct(ctx, item.ProductID); gerr == nil {
				stock = current.Stock
			}
			unavailable = append(unavailable, UnavailableItem{
				ProductID: item.ProductID,
				Name:      item.Product.Name,
				Requested: item.Quantity,
				Stock:     stock,
			})
			continue
		}

		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
		purchased = append(purchased, item.ProductID)
		ticketItems = append(ticketItems, models.TicketItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
		})
	}

	if len(purchased) == 0 {
		l.Info("purchase skipped, no purchasable items", "unavailable", len(unavailable))
		return &PurchaseResult{Unavailable: unavailable}, nil
	}

	ticket := models.Ticket{
		Code:             uuid.NewString(),
		PurchaseDatetime: time.Now(),
		Amount:           total,
		PurchaserEmail:   purchaser.Email,
		UserID:           purchaser.ID,
		Items:            ticketItems,
	}
	if err := s.Repo.CreateTicket(ctx, &ticket); err != nil {
		return nil, err
	}

	if err := s.Repo.DeleteItems(ctx, cartID, purchased); err != nil {
		return nil, err
	}

	l.Info("purchase completed",
		"ticket_code", ticket.Code,
		"amount", ticket.Amount.String(),
		"purchased", len(purchased),
		"unavailable", len(unavailable),
	)

	if s.Events != nil {
		event := map[string]any{
			"type":      "purchase_completed",
			"ticketID":  ticket.ID.String(),
			"code":      ticket.Code,
			"amount":    ticket.Amount.String(),
			"purchaser": ticket.PurchaserEmail,
		}
		if err := s.Events.Publish(ctx, "ticket_events", ticket.ID.String(), event); err != nil {
			l.Error("publish purchase event", "error", err)
		}
	}

	if s.Mailer != nil {
		to, name := purchaser.Email, purchaser.FirstName
		t := ticket
		go func() {
			if err := s.Mailer.SendPurchaseReceipt(to, name, &t); err != nil {
				l.Error("send purchase receipt", "error", err)
			}
		}()
	}

	return &PurchaseResult{Ticket: &ticket, Unavailable: unavailable}, nil
}

func (s *PurchaseService) Ticket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.Repo.GetTicket(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return ticket, err
}

// TicketsForUser returns the purchase history, oldest first.
func (s *PurchaseService) TicketsForUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	return s.Repo.GetTicketsByUser(ctx, userID)
}
