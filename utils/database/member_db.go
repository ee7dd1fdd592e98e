package database

import (
	"context"
	"corp-bot/model"
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrMemberNotFound is returned when no member row matches a lookup.
var ErrMemberNotFound = errors.New("member not found")

// The auth site writes the literal string 'NULL' for missing character IDs.
const characterIDColumn = "CASE WHEN character_id = 'NULL' THEN NULL ELSE character_id END AS character_id"

var knowledgeColumns = []string{
	"know_scanning", "know_rolling", "know_pvp", "know_logistics", "know_capitals",
	"know_hacking", "know_industry", "know_doctrine", "know_fleet_command", "know_bookmarks",
}

var memberBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// InitMemberDB opens the auth site's member database read-only.
func InitMemberDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to member database: %w", err)
	}
	return db, nil
}

func memberColumns() []string {
	cols := []string{
		"character_name",
		"main",
		characterIDColumn,
		"COALESCE(corporation, '') AS corporation",
		"reddit",
		"COALESCE(status, '') AS status",
	}
	for _, c := range knowledgeColumns {
		cols = append(cols, fmt.Sprintf("COALESCE(%s, 0) AS %s", c, c))
	}
	return cols
}

func selectBuilder(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func validCharacterID() sq.Sqlizer {
	return sq.And{
		sq.NotEq{"character_id": nil},
		sq.Expr("character_id != 'NULL'"),
	}
}

// GetAcceptedMains returns the distinct main names of all accepted members.
func GetAcceptedMains(ctx context.Context, q sqlx.QueryerContext) ([]string, error) {
	var mains []string
	query := memberBuilder.
		Select("main").
		Distinct().
		From("member").
		Where(sq.And{
			sq.Eq{"status": model.StatusAccepted},
			sq.NotEq{"main": nil},
		}).
		OrderBy("main")
	if err := selectBuilder(ctx, q, &mains, query); err != nil {
		return nil, fmt.Errorf("failed to get accepted mains: %w", err)
	}
	return mains, nil
}

// GetAltCharacterIDs returns the character IDs of every accepted character
// linked to main, sorted ascending.
func GetAltCharacterIDs(ctx context.Context, q sqlx.QueryerContext, main string) ([]int64, error) {
	var ids []int64
	query := memberBuilder.
		Select("character_id").
		From("member").
		Where(sq.And{
			sq.Eq{"main": main},
			sq.Eq{"status": model.StatusAccepted},
			validCharacterID(),
		})
	if err := selectBuilder(ctx, q, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to get alt character ids for %s: %w", main, err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// GetCharacterID returns the character ID of name, or false if none is on file.
func GetCharacterID(ctx context.Context, q sqlx.QueryerContext, name string) (int64, bool, error) {
	var ids []int64
	query := memberBuilder.
		Select("character_id").
		From("member").
		Where(sq.And{
			sq.Eq{"character_name": name},
			validCharacterID(),
		}).
		Limit(1)
	if err := selectBuilder(ctx, q, &ids, query); err != nil {
		return 0, false, fmt.Errorf("failed to get character id for %s: %w", name, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// GetMemberByName looks up a member by character name, ignoring case.
func GetMemberByName(ctx context.Context, q sqlx.QueryerContext, name string) (*model.Member, error) {
	var members []model.Member
	query := memberBuilder.
		Select(memberColumns()...).
		From("member").
		Where(sq.Expr("character_name = ? COLLATE NOCASE", strings.TrimSpace(name))).
		Limit(1)
	if err := selectBuilder(ctx, q, &members, query); err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", name, err)
	}
	if len(members) == 0 {
		return nil, ErrMemberNotFound
	}
	return &members[0], nil
}

// GetCharacterNamesByMain returns every character linked to main, sorted by name.
func GetCharacterNamesByMain(ctx context.Context, q sqlx.QueryerContext, main string) ([]string, error) {
	var names []string
	query := memberBuilder.
		Select("character_name").
		From("member").
		Where(sq.Eq{"main": main}).
		OrderBy("character_name COLLATE NOCASE")
	if err := selectBuilder(ctx, q, &names, query); err != nil {
		return nil, fmt.Errorf("failed to get characters of %s: %w", main, err)
	}
	return names, nil
}

// GetCharacterNamesByReddit returns every character linked to a reddit handle, ignoring case.
func GetCharacterNamesByReddit(ctx context.Context, q sqlx.QueryerContext, handle string) ([]string, error) {
	var names []string
	query := memberBuilder.
		Select("character_name").
		From("member").
		Where(sq.Expr("reddit = ? COLLATE NOCASE", strings.TrimSpace(handle))).
		OrderBy("character_name COLLATE NOCASE")
	if err := selectBuilder(ctx, q, &names, query); err != nil {
		return nil, fmt.Errorf("failed to get characters for reddit user %s: %w", handle, err)
	}
	return names, nil
}

// MemberStore binds the member queries to one database handle.
type MemberStore struct {
	db *sqlx.DB
}

// NewMemberStore wraps an open member database.
func NewMemberStore(db *sqlx.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (m *MemberStore) AcceptedMains(ctx context.Context) ([]string, error) {
	return GetAcceptedMains(ctx, m.db)
}

func (m *MemberStore) AltCharacterIDs(ctx context.Context, main string) ([]int64, error) {
	return GetAltCharacterIDs(ctx, m.db, main)
}

func (m *MemberStore) CharacterID(ctx context.Context, name string) (int64, bool, error) {
	return GetCharacterID(ctx, m.db, name)
}

func (m *MemberStore) GetMemberByName(ctx context.Context, name string) (*model.Member, error) {
	return GetMemberByName(ctx, m.db, name)
}

func (m *MemberStore) CharacterNamesByMain(ctx context.Context, main string) ([]string, error) {
	return GetCharacterNamesByMain(ctx, m.db, main)
}

func (m *MemberStore) CharacterNamesByReddit(ctx context.Context, handle string) ([]string, error) {
	return GetCharacterNamesByReddit(ctx, m.db, handle)
}
