package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"groupme-bot/internal/models"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberRepository abstracts member persistence.
type MemberRepository interface {
	GetByUserID(ctx context.Context, groupID, userID string) (models.Member, error)
	GetByUsername(ctx context.Context, groupID, username string) (models.Member, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
	ListMods(ctx context.Context, groupID string) ([]models.Member, error)
	ListIgnored(ctx context.Context, groupID string) ([]models.Member, error)
	Upsert(ctx context.Context, member models.Member) error
	SetModerator(ctx context.Context, groupID, userID string, mod bool) error
	SetIgnored(ctx context.Context, groupID, userID string, ignored bool) error
	IncrementCounters(ctx context.Context, groupID, userID string, messages, likesReceived, likesGiven int) error
	ResetCounters(ctx context.Context, groupID string) error
	DeleteMembers(ctx context.Context, groupID string) error
}

// MemberRepo is a sqlx implementation of MemberRepository.
type MemberRepo struct {
	db *sqlx.DB
}

// NewMemberRepo constructs a MemberRepo.
func NewMemberRepo(db *sqlx.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

const memberColumns = `id, user_id, group_id, username, avatar_url, message_count, like_count, likes_given, is_ignored, is_mod`

// GetByUserID fetches a member by its platform user id.
func (r *MemberRepo) GetByUserID(ctx context.Context, groupID, userID string) (models.Member, error) {
	var member models.Member
	err := r.db.GetContext(ctx, &member, `SELECT `+memberColumns+` FROM members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrMemberNotFound
	}
	return member, err
}

// GetByUsername fetches a member by nickname, case-insensitively.
func (r *MemberRepo) GetByUsername(ctx context.Context, groupID, username string) (models.Member, error) {
	var member models.Member
	err := r.db.GetContext(ctx, &member, `SELECT `+memberColumns+` FROM members WHERE group_id=$1 AND LOWER(username)=LOWER($2)`, groupID, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrMemberNotFound
	}
	return member, err
}

// ListMembers returns every member record in the group.
func (r *MemberRepo) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM members WHERE group_id=$1 ORDER BY id`, groupID)
	return members, err
}

// ListMods returns the group's moderators.
func (r *MemberRepo) ListMods(ctx context.Context, groupID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM members WHERE group_id=$1 AND is_mod`, groupID)
	return members, err
}

// ListIgnored returns members banned from issuing commands.
func (r *MemberRepo) ListIgnored(ctx context.Context, groupID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM members WHERE group_id=$1 AND is_ignored`, groupID)
	return members, err
}

// Upsert inserts a member or refreshes its nickname and avatar.
func (r *MemberRepo) Upsert(ctx context.Context, member models.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (user_id, group_id, username, avatar_url)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (group_id, user_id) DO UPDATE SET username=EXCLUDED.username, avatar_url=EXCLUDED.avatar_url`,
		member.UserID, member.GroupID, member.Username, member.AvatarURL)
	return err
}

// SetModerator toggles moderator status.
func (r *MemberRepo) SetModerator(ctx context.Context, groupID, userID string, mod bool) error {
	return r.setFlag(ctx, "is_mod", groupID, userID, mod)
}

// SetIgnored toggles the ignore flag.
func (r *MemberRepo) SetIgnored(ctx context.Context, groupID, userID string, ignored bool) error {
	return r.setFlag(ctx, "is_ignored", groupID, userID, ignored)
}

func (r *MemberRepo) setFlag(ctx context.Context, column, groupID, userID string, value bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE members SET `+column+`=$3 WHERE group_id=$1 AND user_id=$2`, groupID, userID, value)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// IncrementCounters applies aggregation deltas server-side so concurrent
// handlers on the same group cannot lose updates.
func (r *MemberRepo) IncrementCounters(ctx context.Context, groupID, userID string, messages, likesReceived, likesGiven int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE members SET message_count = message_count + $3,
            like_count = like_count + $4,
            likes_given = likes_given + $5
         WHERE group_id=$1 AND user_id=$2`,
		groupID, userID, messages, likesReceived, likesGiven)
	return err
}

// ResetCounters zeroes every counter in the group ahead of a full backfill.
func (r *MemberRepo) ResetCounters(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE members SET message_count=0, like_count=0, likes_given=0 WHERE group_id=$1`, groupID)
	return err
}

// DeleteMembers removes every member record in the group.
func (r *MemberRepo) DeleteMembers(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE group_id=$1`, groupID)
	return err
}
