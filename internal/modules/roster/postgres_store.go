package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	playerdomain "github.com/eskrenkovic/slotbot/internal/modules/player/domain"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type rosterRow struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Timeslot  time.Time `db:"timeslot"`
	Expired   bool      `db:"expired"`
	CreatedAt time.Time `db:"created_at"`
}

type membershipRow struct {
	RosterID int64     `db:"roster_id"`
	PlayerID int64     `db:"player_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type memberRow struct {
	RosterID        int64     `db:"roster_id"`
	JoinedAt        time.Time `db:"joined_at"`
	PlayerID        int64     `db:"player_id"`
	UserID          int64     `db:"user_id"`
	Username        string    `db:"username"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	Timezone        string    `db:"timezone"`
	PlayerCreatedAt time.Time `db:"player_created_at"`
}

func (m memberRow) membership() domain.Membership {
	return domain.Membership{
		JoinedAt: m.JoinedAt.UTC(),
		Player: playerdomain.Player{
			ID:        m.PlayerID,
			UserID:    m.UserID,
			Username:  m.Username,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Timezone:  m.Timezone,
			CreatedAt: m.PlayerCreatedAt,
		},
	}
}

const rosterColumns = `id, chat_id, timeslot, expired, created_at`

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db}
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (domain.Roster, error) {
	const query = `
		SELECT ` + rosterColumns + `
		FROM
			roster
		WHERE
			id = $1;`

	return s.loadOne(ctx, query, id)
}

func (s *PostgresStore) FindByTimeslot(ctx context.Context, chatID int64, timeslot time.Time) (domain.Roster, error) {
	const query = `
		SELECT ` + rosterColumns + `
		FROM
			roster
		WHERE
			chat_id = $1 AND timeslot = $2 AND NOT expired;`

	return s.loadOne(ctx, query, chatID, timeslot.UTC())
}

func (s *PostgresStore) ListByChat(ctx context.Context, chatID int64, includeExpired bool) ([]domain.Roster, error) {
	const query = `
		SELECT ` + rosterColumns + `
		FROM
			roster
		WHERE
			chat_id = $1 AND ($2 OR NOT expired)
		ORDER BY
			timeslot, id;`

	rows, err := tql.Query[rosterRow](ctx, s.db, query, chatID, includeExpired)
	if err != nil {
		return nil, err
	}

	return s.withMembers(ctx, s.db, rows)
}

func (s *PostgresStore) Create(ctx context.Context, r domain.Roster) (domain.Roster, error) {
	const stmt = `
		INSERT INTO roster
			(chat_id, timeslot, expired, created_at)
		VALUES
			($1, $2, $3, $4)
		RETURNING ` + rosterColumns + `;`

	return core.TxResult(ctx, s.db, func(ctx context.Context, tx *sql.Tx) (domain.Roster, error) {
		row, err := tql.QueryFirst[rosterRow](ctx, tx, stmt, r.ChatID, r.Timeslot.UTC(), r.Expired, r.CreatedAt.UTC())
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return domain.Roster{}, domain.ErrDuplicateSlot
			}
			return domain.Roster{}, err
		}

		if err := insertMembers(ctx, tx, row.ID, r.Members); err != nil {
			return domain.Roster{}, err
		}

		created := r.Clone()
		created.ID = row.ID
		created.Timeslot = row.Timeslot.UTC()
		created.CreatedAt = row.CreatedAt.UTC()
		domain.Retier(created.Members)

		return created, nil
	})
}

// Save writes the expired flag and replaces the membership set in one
// transaction, keeping join order for ties.
func (s *PostgresStore) Save(ctx context.Context, r domain.Roster) error {
	const update = `
		UPDATE
			roster
		SET
			expired = $2
		WHERE
			id = $1;`

	const clear = `
		DELETE FROM
			membership
		WHERE
			roster_id = $1;`

	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tql.Exec(ctx, tx, update, r.ID, r.Expired)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		if _, err := tql.Exec(ctx, tx, clear, r.ID); err != nil {
			return err
		}

		return insertMembers(ctx, tx, r.ID, r.Members)
	}, core.WithIsolationLevel(sql.LevelRepeatableRead))
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	const stmt = `
		DELETE FROM
			roster
		WHERE
			id = $1;`

	res, err := tql.Exec(ctx, s.db, stmt, id)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func insertMembers(ctx context.Context, tx *sql.Tx, rosterID int64, members []domain.Membership) error {
	const stmt = `
		INSERT INTO membership
			(roster_id, player_id, joined_at)
		VALUES
			(:roster_id, :player_id, :joined_at);`

	for _, m := range members {
		row := membershipRow{RosterID: rosterID, PlayerID: m.Player.ID, JoinedAt: m.JoinedAt.UTC()}
		if _, err := tql.Exec(ctx, tx, stmt, row); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostgresStore) loadOne(ctx context.Context, query string, params ...any) (domain.Roster, error) {
	row, err := tql.QueryFirst[rosterRow](ctx, s.db, query, params...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Roster{}, domain.ErrRosterNotFound
		}
		return domain.Roster{}, err
	}

	rosters, err := s.withMembers(ctx, s.db, []rosterRow{row})
	if err != nil {
		return domain.Roster{}, err
	}

	return rosters[0], nil
}

func (s *PostgresStore) withMembers(ctx context.Context, q tql.Querier, rows []rosterRow) ([]domain.Roster, error) {
	const query = `
		SELECT
			m.roster_id,
			m.joined_at,
			p.id AS player_id,
			p.user_id,
			p.username,
			p.first_name,
			p.last_name,
			p.timezone,
			p.created_at AS player_created_at
		FROM
			membership m
		JOIN
			player p ON p.id = m.player_id
		WHERE
			m.roster_id = ANY($1)
		ORDER BY
			m.roster_id, m.joined_at, m.id;`

	rosters := make([]domain.Roster, 0, len(rows))
	if len(rows) == 0 {
		return rosters, nil
	}

	ids := core.Map(rows, func(r rosterRow) int64 { return r.ID })

	members, err := tql.Query[memberRow](ctx, q, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	byRoster := make(map[int64][]domain.Membership, len(rows))
	for _, m := range members {
		byRoster[m.RosterID] = append(byRoster[m.RosterID], m.membership())
	}

	for _, row := range rows {
		r := domain.Roster{
			ID:        row.ID,
			ChatID:    row.ChatID,
			Timeslot:  row.Timeslot.UTC(),
			Expired:   row.Expired,
			CreatedAt: row.CreatedAt.UTC(),
			Members:   byRoster[row.ID],
		}
		domain.Retier(r.Members)
		rosters = append(rosters, r)
	}

	return rosters, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRosterNotFound
	}
	return nil
}
