package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/domain/cup"
	qb "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/querybuilder"
)

type CupAuditRepository struct {
	db *sqlx.DB
}

func NewCupAuditRepository(db *sqlx.DB) *CupAuditRepository {
	return &CupAuditRepository{db: db}
}

type cupAuditInsertModel struct {
	SessionID       string         `db:"session_id"`
	SeasonID        int64          `db:"season_id"`
	FixtureSnapshot []byte         `db:"fixture_snapshot"`
	ConditionMet    bool           `db:"condition_met"`
	Reasoning       string         `db:"reasoning"`
	StatusActivated bool           `db:"status_activated"`
	StatusActiveAt  *time.Time     `db:"status_activated_at"`
	Decision        string         `db:"decision"`
	ActionTaken     string         `db:"action_taken"`
	DurationMs      int64          `db:"duration_ms"`
	Errors          pq.StringArray `db:"errors"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r *CupAuditRepository) Insert(ctx context.Context, record cup.AuditRecord) error {
	snapshot, err := sonic.Marshal(record.FixtureSnapshot)
	if err != nil {
		return fmt.Errorf("marshal cup audit fixture snapshot: %w", err)
	}

	insertModel := cupAuditInsertModel{
		SessionID:       record.SessionID,
		SeasonID:        record.SeasonID,
		FixtureSnapshot: snapshot,
		ConditionMet:    record.ConditionMet,
		Reasoning:       record.Reasoning,
		StatusActivated: record.StatusCheck.Activated,
		StatusActiveAt:  record.StatusCheck.ActivatedAt,
		Decision:        record.Decision,
		ActionTaken:     record.ActionTaken,
		DurationMs:      record.DurationMs,
		Errors:          pq.StringArray(record.Errors),
		CreatedAt:       record.CreatedAt,
	}
	query, args, err := qb.InsertModel("cup_activation_audit", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert cup activation audit query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert cup activation audit: %w", err)
	}
	return nil
}
