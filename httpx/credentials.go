package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/quick-survey-console/log"
)

var (
	errBadCredentials = errors.New("bad credentials")
	errCannotRefresh  = errors.New("could not refresh")
)

type credentialsVerifier struct {
	db         *sql.DB
	refreshTTL time.Duration
}

// CredentialsVerifier checks user passwords against their bcrypt hash and
// keeps issued refresh tokens in the token table, one use each. Tokens
// carry the user's roles as the "roles" claim.
func CredentialsVerifier(db *sql.DB, refreshTTL time.Duration) oauth.CredentialsVerifier {
	return &credentialsVerifier{db, refreshTTL}
}

func (cs *credentialsVerifier) ValidateUser(username, password, scope string, r *http.Request) error {
	var hash []byte
	err := cs.db.
		QueryRowContext(r.Context(), "SELECT password_hash FROM user WHERE username = ?", username).
		Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		log.WithFields(log.Fields{"user": username}).Debug("credentials.unknown_user")
		return errBadCredentials
	}
	if err != nil {
		return err
	}

	if err = bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		log.WithFields(log.Fields{"user": username}).Debug("credentials.wrong_password")
		return errBadCredentials
	}
	return nil
}

// StoreTokenID records a refresh token, dropping the expired ones on the way.
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	now := time.Now()
	if _, err := cs.db.Exec("DELETE FROM token WHERE expiration < ?", now); err != nil {
		log.WithError(err).Warn("credentials.purge_tokens")
	}

	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		credential,
		tokenID,
		refreshTokenID,
		now.Add(cs.refreshTTL),
	)
	return err
}

// ValidateTokenID consumes a refresh token: it is valid once.
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	var expiration time.Time
	err := cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration)
	if err != nil {
		log.WithFields(log.Fields{"user": credential}).Debug("credentials.unknown_refresh_token")
		return errCannotRefresh
	}

	if expiration.Before(time.Now()) {
		return errCannotRefresh
	}
	return nil
}

func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	var roles string
	err := cs.db.
		QueryRowContext(r.Context(), "SELECT roles FROM user WHERE username = ?", credential).
		Scan(&roles)
	if err != nil {
		return nil, err
	}
	return map[string]string{"roles": roles}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID, clientSecret, scope string, r *http.Request) error {
	return errors.New("client credentials not supported")
}
