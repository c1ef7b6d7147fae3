package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dalchat-backend/internal/models"
	"dalchat-backend/internal/snowflake"
)

// Every server starts with these two channels. The general channel can never
// be deleted.
const (
	GeneralChannelID      = "general"
	AnnouncementChannelID = "announcements"
)

// CreateServer allocates the server, its owner membership and the two seeded
// channels in one transaction.
func (s *Store) CreateServer(ctx context.Context, name string, ownerID int64, ownerDisplayName string) (models.Server, error) {
	if name == "" || ownerDisplayName == "" {
		return models.Server{}, ErrInvalidInput
	}

	serverID, err := snowflake.Generate()
	if err != nil {
		return models.Server{}, err
	}

	createdAt := snowflake.Timestamp(serverID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Server{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO servers (id, owner_id, name) VALUES(?, ?, ?)",
		serverID, ownerID, name)
	if err != nil {
		return models.Server{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO server_members (server_id, user_id, display_name, role, joined_at) VALUES(?, ?, ?, ?, ?)",
		serverID, ownerID, ownerDisplayName, models.RoleOwner, createdAt.UnixMilli())
	if err != nil {
		return models.Server{}, err
	}

	// general first, announcements one tick later so listing by created_at
	// keeps the seeded order
	seeded := []struct {
		id, name string
		at       int64
	}{
		{GeneralChannelID, "general", createdAt.UnixMilli()},
		{AnnouncementChannelID, "announcements", createdAt.UnixMilli() + 1},
	}

	for _, ch := range seeded {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO channels (server_id, id, name, created_at) VALUES(?, ?, ?, ?)",
			serverID, ch.id, ch.name, ch.at)
		if err != nil {
			return models.Server{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Server{}, err
	}

	return models.Server{
		ID:        serverID,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

// ServersFor lists the servers a user belongs to, oldest first.
func (s *Store) ServersFor(ctx context.Context, userID int64) ([]models.Server, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.owner_id, s.name
		FROM servers s
		JOIN server_members m ON s.id = m.server_id
		WHERE m.user_id = ?
		ORDER BY s.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	servers := []models.Server{}

	for rows.Next() {
		var server models.Server
		if err := rows.Scan(&server.ID, &server.OwnerID, &server.Name); err != nil {
			return nil, err
		}
		server.CreatedAt = snowflake.Timestamp(server.ID)
		servers = append(servers, server)
	}

	return servers, rows.Err()
}

func (s *Store) serverExists(ctx context.Context, serverID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM servers WHERE id = ?)", serverID).Scan(&exists)
	return exists, err
}

// Join adds a user to a server with the member role. Joining a server the
// user already belongs to is a successful no-op; the existing role and
// display name snapshot stay untouched.
func (s *Store) Join(ctx context.Context, serverID int64, userID int64, displayName string) error {
	if displayName == "" {
		return ErrInvalidInput
	}

	exists, err := s.serverExists(ctx, serverID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = s.MemberRole(ctx, serverID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotMember) {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO server_members (server_id, user_id, display_name, role, joined_at) VALUES(?, ?, ?, ?, ?)",
		serverID, userID, displayName, models.RoleMember, time.Now().UnixMilli())
	if err != nil && isDuplicateKey(err) {
		// lost a race against another join of the same user, still a success
		return nil
	}
	return err
}

// MemberRole resolves a user's role in a server. ErrNotMember when the server
// exists but the user isn't in it, ErrNotFound when the server doesn't exist.
func (s *Store) MemberRole(ctx context.Context, serverID int64, userID int64) (models.Role, error) {
	var role models.Role
	err := s.db.QueryRowContext(ctx,
		"SELECT role FROM server_members WHERE server_id = ? AND user_id = ?",
		serverID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		exists, existsErr := s.serverExists(ctx, serverID)
		if existsErr != nil {
			return "", existsErr
		}
		if !exists {
			return "", ErrNotFound
		}
		return "", ErrNotMember
	} else if err != nil {
		return "", err
	}

	return role, nil
}

// Members lists a server's roster in join order.
func (s *Store) Members(ctx context.Context, serverID int64) ([]models.Member, error) {
	exists, err := s.serverExists(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT server_id, user_id, display_name, role, joined_at
		FROM server_members
		WHERE server_id = ?
		ORDER BY joined_at ASC, user_id ASC`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}

	for rows.Next() {
		var member models.Member
		var joinedAt int64
		err := rows.Scan(&member.ServerID, &member.UserID, &member.DisplayName, &member.Role, &joinedAt)
		if err != nil {
			return nil, err
		}
		member.JoinedAt = time.UnixMilli(joinedAt).UTC()
		members = append(members, member)
	}

	return members, rows.Err()
}

// SetRole changes a member's role. Only the server owner may do this, the
// target must already be a member, and only admin/moderator/member are
// assignable. The owner's own membership can never be modified through this
// path, which also guarantees the server always keeps its owner.
func (s *Store) SetRole(ctx context.Context, serverID int64, actingUserID int64, targetUserID int64, newRole models.Role) error {
	actingRole, err := s.MemberRole(ctx, serverID, actingUserID)
	if err != nil {
		return err
	}
	if !actingRole.Can(models.ActionSetRole) {
		return ErrInsufficientPermission
	}

	if !newRole.Assignable() {
		return ErrInvalidRole
	}

	targetRole, err := s.MemberRole(ctx, serverID, targetUserID)
	if errors.Is(err, ErrNotMember) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	if targetRole == models.RoleOwner {
		return ErrInvalidRole
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE server_members SET role = ? WHERE server_id = ? AND user_id = ?",
		newRole, serverID, targetUserID)
	return err
}
