package player

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player/domain"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	core.Repository[domain.Player]
	GetByUserID(ctx context.Context, userID int64) (domain.Player, error)
	// Upsert creates the player for p.UserID or refreshes its display names.
	Upsert(ctx context.Context, p domain.Player) (domain.Player, error)
}

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	*core.MemoryRepository[domain.Player]
	mu sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		MemoryRepository: core.NewMemoryRepository(core.EntityAccessor[domain.Player]{
			ID:     func(p domain.Player) int64 { return p.ID },
			WithID: func(p domain.Player, id int64) domain.Player { p.ID = id; return p },
		}, domain.ErrPlayerNotFound),
	}
}

func (s *MemoryStore) GetByUserID(_ context.Context, userID int64) (domain.Player, error) {
	found := s.List(func(p domain.Player) bool { return p.UserID == userID })
	if len(found) == 0 {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return found[0], nil
}

func (s *MemoryStore) Upsert(ctx context.Context, p domain.Player) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.GetByUserID(ctx, p.UserID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		if p.Timezone == "" {
			p.Timezone = domain.DefaultTimezone
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		return s.Create(ctx, p)
	}
	if err != nil {
		return domain.Player{}, err
	}

	if existing.SyncNames(p.Username, p.FirstName, p.LastName) {
		if err := s.Save(ctx, existing); err != nil {
			return domain.Player{}, err
		}
	}

	return existing, nil
}

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "postgres")}
}

const playerColumns = `id, user_id, username, first_name, last_name, timezone, created_at`

func (s *PostgresStore) Get(ctx context.Context, id int64) (domain.Player, error) {
	const q = `
		SELECT ` + playerColumns + `
		FROM
			player
		WHERE
			id = $1;`

	var p domain.Player
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		return domain.Player{}, mapNoRows(err)
	}

	return p, nil
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID int64) (domain.Player, error) {
	const q = `
		SELECT ` + playerColumns + `
		FROM
			player
		WHERE
			user_id = $1;`

	var p domain.Player
	if err := s.db.GetContext(ctx, &p, q, userID); err != nil {
		return domain.Player{}, mapNoRows(err)
	}

	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p domain.Player) (domain.Player, error) {
	const stmt = `
		INSERT INTO player
			(user_id, username, first_name, last_name, timezone)
		VALUES
			($1, $2, $3, $4, $5)
		RETURNING ` + playerColumns + `;`

	if p.Timezone == "" {
		p.Timezone = domain.DefaultTimezone
	}

	var created domain.Player
	err := s.db.QueryRowxContext(ctx, stmt, p.UserID, p.Username, p.FirstName, p.LastName, p.Timezone).
		StructScan(&created)

	return created, err
}

func (s *PostgresStore) Upsert(ctx context.Context, p domain.Player) (domain.Player, error) {
	const stmt = `
		INSERT INTO player
			(user_id, username, first_name, last_name, timezone)
		VALUES
			($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name
		RETURNING ` + playerColumns + `;`

	if p.Timezone == "" {
		p.Timezone = domain.DefaultTimezone
	}

	var upserted domain.Player
	err := s.db.QueryRowxContext(ctx, stmt, p.UserID, p.Username, p.FirstName, p.LastName, p.Timezone).
		StructScan(&upserted)

	return upserted, err
}

func (s *PostgresStore) Save(ctx context.Context, p domain.Player) error {
	const stmt = `
		UPDATE
			player
		SET
			username = :username,
			first_name = :first_name,
			last_name = :last_name,
			timezone = :timezone
		WHERE
			id = :id;`

	res, err := s.db.NamedExecContext(ctx, stmt, p)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM player WHERE id = $1;`, id)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrPlayerNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}
