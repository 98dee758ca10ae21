package pgsql

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOutboxRepository struct {
	pool *pgxpool.Pool
}

func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepository {
	return &PgxOutboxRepository{pool: pool}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

// EnqueueOutboxMessage inserts under a savepoint so a failed enqueue leaves
// the caller's transaction usable.
func (r *PgxOutboxRepository) EnqueueOutboxMessage(ctx context.Context, tx pgx.Tx, eventID, exchange, routingKey string, payload []byte) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open outbox savepoint: %w", err)
	}
	query := `
		INSERT INTO outbox_messages (event_id, exchange, routing_key, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING;
	`
	if _, err := sp.Exec(ctx, query, eventID, exchange, routingKey, payload, string(domain.OutboxPending)); err != nil {
		_ = sp.Rollback(ctx)
		return fmt.Errorf("failed to enqueue outbox event %s: %w", eventID, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release outbox savepoint: %w", err)
	}
	return nil
}

// ClaimOutboxMessages takes due pending rows plus processing rows whose claim went stale.
// SKIP LOCKED lets several dispatchers poll the same table.
func (r *PgxOutboxRepository) ClaimOutboxMessages(ctx context.Context, limit int, staleAfterSeconds int) ([]domain.OutboxMessage, error) {
	query := `
		UPDATE outbox_messages
		SET status = $3, claimed_at = NOW(), attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE (status = $4 AND available_at <= NOW())
			   OR (status = $3 AND claimed_at < NOW() - ($2::int * INTERVAL '1 second'))
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, exchange, routing_key, payload, attempts;
	`
	rows, err := r.pool.Query(ctx, query, limit, staleAfterSeconds, string(domain.OutboxProcessing), string(domain.OutboxPending))
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.OutboxMessage
	for rows.Next() {
		var m domain.OutboxMessage
		if err := rows.Scan(&m.ID, &m.EventID, &m.Exchange, &m.RoutingKey, &m.Payload, &m.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox rows: %w", err)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

func (r *PgxOutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	query := `UPDATE outbox_messages SET status = $2, published_at = NOW(), last_error = NULL WHERE id = $1;`
	if _, err := r.pool.Exec(ctx, query, id, string(domain.OutboxPublished)); err != nil {
		return fmt.Errorf("failed to mark outbox message %d published: %w", id, err)
	}
	return nil
}

// MarkOutboxFailed returns the row to pending once retryAfterSeconds have passed.
func (r *PgxOutboxRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	query := `
		UPDATE outbox_messages
		SET status = $2, available_at = NOW() + ($3::int * INTERVAL '1 second'), last_error = $4
		WHERE id = $1;
	`
	if _, err := r.pool.Exec(ctx, query, id, string(domain.OutboxPending), retryAfterSeconds, reason); err != nil {
		return fmt.Errorf("failed to reschedule outbox message %d: %w", id, err)
	}
	return nil
}
