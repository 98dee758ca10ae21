package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/ebank_backoffice/internal/adapters/messaging/rabbitmq"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockOutboxRepository struct {
	mock.Mock
}

var _ portsrepo.OutboxRepository = (*MockOutboxRepository)(nil)

func (m *MockOutboxRepository) EnqueueOutboxMessage(ctx context.Context, tx pgx.Tx, eventID, exchange, routingKey string, payload []byte) error {
	args := m.Called(ctx, tx, eventID, exchange, routingKey, payload)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimOutboxMessages(ctx context.Context, limit int, staleAfterSeconds int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, limit, staleAfterSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	args := m.Called(ctx, id, retryAfterSeconds, reason)
	return args.Error(0)
}

type MockDeliverySvc struct {
	mock.Mock
}

var _ portssvc.NotificationDeliverySvc = (*MockDeliverySvc)(nil)

func (m *MockDeliverySvc) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDeliverySvc) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

var _ rabbitmq.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

func (m *MockPublisher) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type OutboxDispatcherTestSuite struct {
	suite.Suite
	repo       *MockOutboxRepository
	delivery   *MockDeliverySvc
	publisher  *MockPublisher
	dispatcher *OutboxDispatcher
	ctx        context.Context
}

func (s *OutboxDispatcherTestSuite) SetupTest() {
	s.repo = new(MockOutboxRepository)
	s.delivery = new(MockDeliverySvc)
	s.publisher = new(MockPublisher)
	s.ctx = context.Background()
	s.dispatcher = NewOutboxDispatcher(s.repo, s.delivery, s.publisher, discardLogger(), WithBatchSize(10))
}

func (s *OutboxDispatcherTestSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
	s.delivery.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func TestOutboxDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxDispatcherTestSuite))
}

func (s *OutboxDispatcherTestSuite) message(id int64, attempts int) (domain.OutboxMessage, domain.NotificationEvent) {
	event := domain.InfoNotification("CLT1", "Welcome", "Your account is ready")
	event.EventID = fmt.Sprintf("evt-%d", id)
	payload, err := json.Marshal(event)
	s.Require().NoError(err)
	return domain.OutboxMessage{
		ID:         id,
		EventID:    event.EventID,
		Exchange:   "ebank.notifications",
		RoutingKey: event.RoutingKey(),
		Payload:    payload,
		Attempts:   attempts,
	}, event
}

func eventWithID(id string) interface{} {
	return mock.MatchedBy(func(e domain.NotificationEvent) bool { return e.EventID == id })
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_DeliversPublishesAndMarks() {
	m1, e1 := s.message(1, 1)
	m2, e2 := s.message(2, 1)
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return([]domain.OutboxMessage{m1, m2}, nil).Once()
	s.delivery.On("Deliver", s.ctx, eventWithID(e1.EventID)).Return(nil).Once()
	s.delivery.On("Deliver", s.ctx, eventWithID(e2.EventID)).Return(nil).Once()
	s.publisher.On("Publish", s.ctx, "ebank.notifications", "notification.info", m1.Payload).Return(nil).Once()
	s.publisher.On("Publish", s.ctx, "ebank.notifications", "notification.info", m2.Payload).Return(nil).Once()
	s.repo.On("MarkOutboxPublished", s.ctx, int64(1)).Return(nil).Once()
	s.repo.On("MarkOutboxPublished", s.ctx, int64(2)).Return(nil).Once()

	published, err := s.dispatcher.FlushOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, published)
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_BrokerFailureReschedulesWithBackoff() {
	m, e := s.message(7, 3)
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return([]domain.OutboxMessage{m}, nil).Once()
	s.delivery.On("Deliver", s.ctx, eventWithID(e.EventID)).Return(nil).Once()
	s.publisher.On("Publish", s.ctx, m.Exchange, m.RoutingKey, m.Payload).Return(errors.New("channel closed")).Once()
	s.repo.On("MarkOutboxFailed", s.ctx, int64(7), 8, mock.MatchedBy(func(reason string) bool {
		return assert.Contains(s.T(), reason, "channel closed")
	})).Return(nil).Once()

	published, err := s.dispatcher.FlushOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(published)
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_InboxFailureSkipsPublish() {
	m, e := s.message(3, 1)
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return([]domain.OutboxMessage{m}, nil).Once()
	s.delivery.On("Deliver", s.ctx, eventWithID(e.EventID)).Return(errors.New("db down")).Once()
	s.repo.On("MarkOutboxFailed", s.ctx, int64(3), 2, mock.Anything).Return(nil).Once()

	_, err := s.dispatcher.FlushOnce(s.ctx)
	s.Require().NoError(err)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_UndecodablePayloadIsRescheduled() {
	m := domain.OutboxMessage{ID: 9, EventID: "evt-bad", Exchange: "x", RoutingKey: "notification.info", Payload: []byte("{"), Attempts: 20}
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return([]domain.OutboxMessage{m}, nil).Once()
	s.repo.On("MarkOutboxFailed", s.ctx, int64(9), 300, mock.Anything).Return(nil).Once()

	_, err := s.dispatcher.FlushOnce(s.ctx)
	s.Require().NoError(err)
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_ClaimError() {
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return(nil, errors.New("connection refused")).Once()

	_, err := s.dispatcher.FlushOnce(s.ctx)
	s.Error(err)
}

func (s *OutboxDispatcherTestSuite) TestFlushOnce_EmptyBatch() {
	s.repo.On("ClaimOutboxMessages", s.ctx, 10, 120).Return([]domain.OutboxMessage{}, nil).Once()

	published, err := s.dispatcher.FlushOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(published)
}

func TestRetryDelaySeconds(t *testing.T) {
	cases := map[int]int{0: 1, 1: 2, 2: 4, 5: 32, 8: 256, 9: 300, 50: 300}
	for attempt, want := range cases {
		assert.Equal(t, want, retryDelaySeconds(attempt), "attempt %d", attempt)
	}
}

func TestNewOutboxDispatcher_NilPublisherUsesFallback(t *testing.T) {
	d := NewOutboxDispatcher(new(MockOutboxRepository), new(MockDeliverySvc), nil, discardLogger())
	_, ok := d.publisher.(*rabbitmq.FallbackPublisher)
	require.True(t, ok)
	assert.Equal(t, defaultBatchSize, d.batchSize)
	assert.Equal(t, defaultPollInterval, d.pollInterval)
}
