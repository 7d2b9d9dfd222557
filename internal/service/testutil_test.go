package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mbenitez/tienda/internal/config"
	"github.com/mbenitez/tienda/internal/hash"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return repo.New(db)
}

func seedUser(t *testing.T, r *repo.GormRepo, email, role string) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    "Test",
		Role:         role,
	}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}

func seedCart(t *testing.T, r *repo.GormRepo, userID uuid.UUID) *models.Cart {
	t.Helper()
	cart := &models.Cart{UserID: userID}
	require.NoError(t, r.CreateCart(context.Background(), cart))
	return cart
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: true,
		Owner:  models.AdminOwner,
	}
	require.NoError(t, r.CreateProduct(context.Background(), product))
	return product
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer captures outbound mail instead of dialing SMTP.
type recordingMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	receipts []models.Ticket
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) SendPurchaseReceipt(to, firstName string, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, *ticket)
	return nil
}

func (m *recordingMailer) receiptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

func (m *recordingMailer) lastSent() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) byTopic(topic string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
