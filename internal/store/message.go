package store

import (
	"context"
	"database/sql"
	"errors"

	"dalchat-backend/internal/models"
	"dalchat-backend/internal/snowflake"
)

// AppendMessage appends to a channel's log. The sender must be a member of
// the server; the message carries the sender's member display name as it is
// right now, so historical messages keep the name from send time. Append
// order is the id order: snowflake ids are monotonic and the insert is a
// single statement, so concurrent appends to one channel never interleave.
func (s *Store) AppendMessage(ctx context.Context, serverID int64, channelID string, userID int64, text string) (models.Message, error) {
	if text == "" {
		return models.Message{}, ErrInvalidInput
	}

	var username string
	err := s.db.QueryRowContext(ctx,
		"SELECT display_name FROM server_members WHERE server_id = ? AND user_id = ?",
		serverID, userID).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := s.serverExists(ctx, serverID)
		if existsErr != nil {
			return models.Message{}, existsErr
		}
		if !exists {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, ErrNotMember
	} else if err != nil {
		return models.Message{}, err
	}

	exists, err := s.channelExists(ctx, serverID, channelID)
	if err != nil {
		return models.Message{}, err
	}
	if !exists {
		return models.Message{}, ErrNotFound
	}

	messageID, err := snowflake.Generate()
	if err != nil {
		return models.Message{}, err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO messages (id, server_id, channel_id, user_id, username, message) VALUES(?, ?, ?, ?, ?, ?)",
		messageID, serverID, channelID, userID, username, text)
	if err != nil {
		return models.Message{}, err
	}

	return models.Message{
		ID:        messageID,
		ServerID:  serverID,
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		Time:      snowflake.Timestamp(messageID),
	}, nil
}

// Messages returns a channel's full history, oldest first.
func (s *Store) Messages(ctx context.Context, serverID int64, channelID string) ([]models.Message, error) {
	exists, err := s.channelExists(ctx, serverID, channelID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, server_id, channel_id, user_id, username, message
		FROM messages
		WHERE server_id = ? AND channel_id = ?
		ORDER BY id ASC`, serverID, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}

	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.ServerID, &msg.ChannelID, &msg.UserID, &msg.Username, &msg.Text)
		if err != nil {
			return nil, err
		}
		msg.Time = snowflake.Timestamp(msg.ID)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
