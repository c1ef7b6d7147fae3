package store

import (
	"context"
	"time"

	"dalchat-backend/internal/models"
)

// CreateChannel adds a channel to a server. The acting user needs the
// create-channel capability; the derived slug must not collide with an
// existing channel in the same server.
func (s *Store) CreateChannel(ctx context.Context, serverID int64, name string, actingUserID int64) (models.Channel, error) {
	role, err := s.MemberRole(ctx, serverID, actingUserID)
	if err != nil {
		return models.Channel{}, err
	}
	if !role.Can(models.ActionCreateChannel) {
		return models.Channel{}, ErrInsufficientPermission
	}

	slug := Slugify(name)
	if slug == "" {
		return models.Channel{}, ErrInvalidInput
	}

	createdAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO channels (server_id, id, name, created_at) VALUES(?, ?, ?, ?)",
		serverID, slug, name, createdAt.UnixMilli())
	if err != nil {
		if isDuplicateKey(err) {
			return models.Channel{}, ErrDuplicateChannel
		}
		return models.Channel{}, err
	}

	return models.Channel{
		ServerID:  serverID,
		ID:        slug,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

// DeleteChannel removes a channel and its whole message log in one
// transaction. The general channel is protected for every role.
func (s *Store) DeleteChannel(ctx context.Context, serverID int64, channelID string, actingUserID int64) error {
	role, err := s.MemberRole(ctx, serverID, actingUserID)
	if err != nil {
		return err
	}
	if !role.Can(models.ActionDeleteChannel) {
		return ErrInsufficientPermission
	}

	if channelID == GeneralChannelID {
		return ErrProtectedChannel
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM messages WHERE server_id = ? AND channel_id = ?", serverID, channelID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM channels WHERE server_id = ? AND id = ?", serverID, channelID)
	if err != nil {
		return err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Channels lists a server's channels in creation order, seeded ones first.
func (s *Store) Channels(ctx context.Context, serverID int64) ([]models.Channel, error) {
	exists, err := s.serverExists(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT server_id, id, name, created_at
		FROM channels
		WHERE server_id = ?
		ORDER BY created_at ASC, id ASC`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []models.Channel{}

	for rows.Next() {
		var channel models.Channel
		var createdAt int64
		err := rows.Scan(&channel.ServerID, &channel.ID, &channel.Name, &createdAt)
		if err != nil {
			return nil, err
		}
		channel.CreatedAt = time.UnixMilli(createdAt).UTC()
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

func (s *Store) channelExists(ctx context.Context, serverID int64, channelID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM channels WHERE server_id = ? AND id = ?)",
		serverID, channelID).Scan(&exists)
	return exists, err
}
