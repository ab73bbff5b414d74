package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) Store {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindServiceByGatewayAccountID(ctx context.Context, gatewayAccountID string) (*Service, error) {
	query := `
		SELECT s.external_id, s.name
		FROM services s
		JOIN service_gateway_accounts sga ON sga.service_id = s.id
		WHERE sga.gateway_account_id = $1
	`

	var svc Service
	err := s.db.QueryRowContext(ctx, query, gatewayAccountID).Scan(&svc.ExternalID, &svc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query service for gateway account %s: %w", gatewayAccountID, err)
	}

	return &svc, nil
}

func (s *PostgresStore) FindAdminUsers(ctx context.Context, serviceExternalID string) ([]User, error) {
	query := `
		SELECT u.external_id, u.email
		FROM users u
		JOIN user_services_roles usr ON usr.user_id = u.id
		JOIN roles r ON r.id = usr.role_id
		JOIN services s ON s.id = usr.service_id
		WHERE s.external_id = $1
		  AND r.name = 'admin'
		  AND u.disabled = false
		ORDER BY u.email
	`

	rows, err := s.db.QueryContext(ctx, query, serviceExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin users for service %s: %w", serviceExternalID, err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ExternalID, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}
