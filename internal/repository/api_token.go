package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"loan_allocator/internal/config/connections/postgres"
)

type APIToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	ExpiresAt *time.Time
}

type APITokenRepository struct {
	pg *postgres.Postgres
}

func NewAPITokenRepository(pg *postgres.Postgres) *APITokenRepository {
	return &APITokenRepository{pg: pg}
}

// FindTokenByPlainToken resolves a presented token against the
// api_tokens table. Tokens are issued as "<id>|<secret>" and stored as
// the sha256 of the secret; a bare secret still resolves through the
// fallback lookup.
func (r *APITokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*APIToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	var (
		tokenID   *int64
		tokenPart string
	)

	if idx := strings.Index(plainToken, "|"); idx > 0 {
		idStr := plainToken[:idx]
		tokenPart = plainToken[idx+1:]
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			tokenID = &id
		} else {
			log.Printf("[TOKEN] failed to parse id %q: %v", idStr, err)
		}
	} else {
		tokenPart = plainToken
	}

	sum := sha256.Sum256([]byte(tokenPart))
	hashStr := fmt.Sprintf("%x", sum)

	var tok APIToken

	if tokenID != nil {
		query := `
            SELECT id, token_hash, user_id, expires_at
            FROM api_tokens
            WHERE id = $1
              AND (expires_at IS NULL OR expires_at > $2)
        `

		err := r.pg.Pool.QueryRow(ctx, query, *tokenID, time.Now()).Scan(
			&tok.ID,
			&tok.TokenHash,
			&tok.UserID,
			&tok.ExpiresAt,
		)
		if err != nil {
			log.Printf("[TOKEN] query by id error: %v", err)
		} else if tok.TokenHash == hashStr {
			return &tok, nil
		}
	}

	query := `
        SELECT id, token_hash, user_id, expires_at
        FROM api_tokens
        WHERE token_hash = $1
          AND (expires_at IS NULL OR expires_at > $2)
        ORDER BY created_at DESC
        LIMIT 1
    `

	err := r.pg.Pool.QueryRow(ctx, query, hashStr, time.Now()).Scan(
		&tok.ID,
		&tok.TokenHash,
		&tok.UserID,
		&tok.ExpiresAt,
	)
	if err != nil {
		log.Printf("[TOKEN] fallback query error: %v", err)
		return nil, errors.New("token not found")
	}

	return &tok, nil
}
