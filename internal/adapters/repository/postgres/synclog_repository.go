package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ogurasousui/hrlink/internal/core/synclog"
	pgdb "github.com/ogurasousui/hrlink/internal/platform/db/postgres"
)

const syncLogColumnCount = 9

// SyncLogRepository は同期ログを追記専用で保存します。
type SyncLogRepository struct {
	pool pgdb.Queryer
}

// NewSyncLogRepository は SyncLogRepository を生成します。
func NewSyncLogRepository(pool pgdb.Queryer) *SyncLogRepository {
	return &SyncLogRepository{pool: pool}
}

// Append はログをまとめて 1 文で追記します。
func (r *SyncLogRepository) Append(ctx context.Context, entries ...*synclog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*syncLogColumnCount)
	for i, e := range entries {
		placeholders := make([]string, syncLogColumnCount)
		for j := range placeholders {
			placeholders[j] = "$" + strconv.Itoa(i*syncLogColumnCount+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			e.ID,
			e.ContractID,
			string(e.SyncType),
			e.EntityType,
			string(e.Direction),
			e.OldValue,
			e.NewValue,
			e.ActorID,
			e.CreatedAt,
		)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        INSERT INTO sync_logs (id, contract_id, sync_type, entity_type, direction, old_value, new_value, actor_id, created_at)
        VALUES `+strings.Join(values, ", "), args...); err != nil {
		return fmt.Errorf("sync_logs: append: %w", err)
	}
	return nil
}

// ListByContract は契約の同期ログを新しい順に返します。
func (r *SyncLogRepository) ListByContract(ctx context.Context, contractID string, limit int) ([]*synclog.Entry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, contract_id, sync_type, entity_type, direction, old_value, new_value, actor_id, created_at
          FROM sync_logs
         WHERE contract_id = $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2
    `, contractID, limit)
	if err != nil {
		return nil, fmt.Errorf("sync_logs: list: %w", err)
	}
	defer rows.Close()

	entries := make([]*synclog.Entry, 0)
	for rows.Next() {
		var (
			e                   synclog.Entry
			syncType, direction string
		)
		if err := rows.Scan(&e.ID, &e.ContractID, &syncType, &e.EntityType, &direction, &e.OldValue, &e.NewValue, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sync_logs: scan: %w", err)
		}
		e.SyncType = synclog.SyncType(syncType)
		e.Direction = synclog.Direction(direction)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sync_logs: list: %w", err)
	}
	return entries, nil
}
