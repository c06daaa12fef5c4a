package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"groupme-bot/internal/models"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupRepository abstracts group persistence.
type GroupRepository interface {
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	CreateGroup(ctx context.Context, group models.Group) (models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	UpdateStats(ctx context.Context, groupID string, name string, messageCount, memberCount, likeDelta int, newest time.Time) error
	SetTopMessage(ctx context.Context, groupID string, text string, likes int) error
	SetLastUpdated(ctx context.Context, groupID string, t time.Time) error
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// GetGroup fetches a single group record.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, group_id, group_name, message_count, like_count, member_count, top_message, top_likes, created_at, last_updated FROM groups WHERE group_id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// CreateGroup inserts a new group record.
func (r *GroupRepo) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO groups (group_id, group_name, message_count, member_count, created_at, last_updated)
         VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		group.GroupID, group.Name, group.MessageCount, group.MemberCount, group.CreatedAt).
		Scan(&group.ID)
	if err != nil {
		return models.Group{}, err
	}
	group.LastUpdated = group.CreatedAt
	return group, nil
}

// DeleteGroup removes a group record.
func (r *GroupRepo) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE group_id=$1`, groupID)
	return err
}

// UpdateStats applies an aggregation pass to the group row in one statement.
// like_count is incremented server-side and last_updated can only advance, so
// concurrent handlers cannot lose updates or move the high-water mark back.
func (r *GroupRepo) UpdateStats(ctx context.Context, groupID string, name string, messageCount, memberCount, likeDelta int, newest time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE groups SET group_name=$2, message_count=$3, member_count=$4,
            like_count = like_count + $5,
            last_updated = GREATEST(last_updated, $6)
         WHERE group_id=$1`,
		groupID, name, messageCount, memberCount, likeDelta, newest)
	return err
}

// SetTopMessage replaces the most-liked message only when the new candidate
// has strictly more likes, so the earliest-seen incumbent wins ties.
func (r *GroupRepo) SetTopMessage(ctx context.Context, groupID string, text string, likes int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE groups SET top_message=$2, top_likes=$3 WHERE group_id=$1 AND top_likes < $3`,
		groupID, text, likes)
	return err
}

// SetLastUpdated overwrites the high-water mark. Used by full backfills,
// which recompute every counter from scratch.
func (r *GroupRepo) SetLastUpdated(ctx context.Context, groupID string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE groups SET last_updated=$2 WHERE group_id=$1`, groupID, t)
	return err
}
