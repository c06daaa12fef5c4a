package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"groupme-bot/internal/models"
)

var ErrCommandNotFound = errors.New("command not found")

// CommandRepository abstracts user-defined command persistence.
type CommandRepository interface {
	GetCommand(ctx context.Context, groupID, name string) (models.CustomCommand, error)
	ListCommands(ctx context.Context, groupID string) ([]models.CustomCommand, error)
	CreateCommand(ctx context.Context, cmd models.CustomCommand) error
	UpdateResponse(ctx context.Context, groupID, name, response string) error
	UpdateDescription(ctx context.Context, groupID, name, description string) error
	DeleteCommand(ctx context.Context, groupID, name string) error
	IncrementUsage(ctx context.Context, groupID, name string) error
}

// CommandRepo is a sqlx implementation of CommandRepository.
type CommandRepo struct {
	db *sqlx.DB
}

// NewCommandRepo constructs a CommandRepo.
func NewCommandRepo(db *sqlx.DB) *CommandRepo {
	return &CommandRepo{db: db}
}

// GetCommand fetches one custom command by its lower-cased name.
func (r *CommandRepo) GetCommand(ctx context.Context, groupID, name string) (models.CustomCommand, error) {
	var cmd models.CustomCommand
	err := r.db.GetContext(ctx, &cmd, `SELECT id, group_id, command, response, description, times_used FROM commands WHERE group_id=$1 AND command=$2`, groupID, strings.ToLower(name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CustomCommand{}, ErrCommandNotFound
	}
	return cmd, err
}

// ListCommands returns every custom command in the group.
func (r *CommandRepo) ListCommands(ctx context.Context, groupID string) ([]models.CustomCommand, error) {
	var cmds []models.CustomCommand
	err := r.db.SelectContext(ctx, &cmds, `SELECT id, group_id, command, response, description, times_used FROM commands WHERE group_id=$1 ORDER BY command`, groupID)
	return cmds, err
}

// CreateCommand inserts a new custom command.
func (r *CommandRepo) CreateCommand(ctx context.Context, cmd models.CustomCommand) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commands (group_id, command, response, description) VALUES ($1, $2, $3, $4)`,
		cmd.GroupID, strings.ToLower(cmd.Name), cmd.Response, cmd.Description)
	return err
}

// UpdateResponse rewrites the stored response text.
func (r *CommandRepo) UpdateResponse(ctx context.Context, groupID, name, response string) error {
	return r.update(ctx, `UPDATE commands SET response=$3 WHERE group_id=$1 AND command=$2`, groupID, name, response)
}

// UpdateDescription rewrites the stored description.
func (r *CommandRepo) UpdateDescription(ctx context.Context, groupID, name, description string) error {
	return r.update(ctx, `UPDATE commands SET description=$3 WHERE group_id=$1 AND command=$2`, groupID, name, description)
}

// DeleteCommand removes a custom command.
func (r *CommandRepo) DeleteCommand(ctx context.Context, groupID, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commands WHERE group_id=$1 AND command=$2`, groupID, strings.ToLower(name))
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrCommandNotFound
	}
	return nil
}

// IncrementUsage bumps the usage counter server-side.
func (r *CommandRepo) IncrementUsage(ctx context.Context, groupID, name string) error {
	return r.update(ctx, `UPDATE commands SET times_used = times_used + 1 WHERE group_id=$1 AND command=$2`, groupID, name, nil)
}

func (r *CommandRepo) update(ctx context.Context, query, groupID, name string, arg any) error {
	args := []any{groupID, strings.ToLower(name)}
	if arg != nil {
		args = append(args, arg)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrCommandNotFound
	}
	return nil
}
