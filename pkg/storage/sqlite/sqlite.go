// Package sqlite provides a SQLite based implementation of
// [storage.Datastore] for single-node deployments that want durable
// relationship data without an external database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
)

var tracer = otel.Tracer("circlevis/pkg/storage/sqlite")

func startTrace(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqlite."+name)
}

// Config holds connection pool and observability settings for the SQLite
// datastore.
type Config struct {
	Logger          logger.Logger
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ExportMetrics   bool
}

// Datastore provides a SQLite based implementation of [storage.Datastore].
type Datastore struct {
	stbl             sq.StatementBuilderType
	db               *sql.DB
	logger           logger.Logger
	dbStatsCollector prometheus.Collector
}

var _ storage.Datastore = (*Datastore)(nil)

// PrepareDSN normalizes a raw DSN for use with SQLite, specifying defaults
// for journal mode and busy timeout.
func PrepareDSN(uri string) (string, error) {
	query := url.Values{}
	var err error

	if i := strings.Index(uri, "?"); i != -1 {
		query, err = url.ParseQuery(uri[i+1:])
		if err != nil {
			return uri, fmt.Errorf("error parsing dsn: %w", err)
		}

		uri = uri[:i]
	}

	foundJournalMode := false
	foundBusyTimeout := false
	for _, val := range query["_pragma"] {
		if strings.HasPrefix(val, "journal_mode") {
			foundJournalMode = true
		} else if strings.HasPrefix(val, "busy_timeout") {
			foundBusyTimeout = true
		}
	}

	if !foundJournalMode {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	if !foundBusyTimeout {
		query.Add("_pragma", "busy_timeout(100)")
	}

	if !query.Has("_txlock") {
		query.Set("_txlock", "immediate")
	}

	uri += "?" + query.Encode()

	return uri, nil
}

// New creates a new [Datastore] over the SQLite database at uri.
func New(uri string, cfg *Config) (*Datastore, error) {
	uri, err := PrepareDSN(uri)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite connection: %w", err)
	}

	if cfg.MaxOpenConns != 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	var collector prometheus.Collector
	if cfg.ExportMetrics {
		collector = collectors.NewDBStatsCollector(db, "circlevis")
		if err := prometheus.Register(collector); err != nil {
			return nil, fmt.Errorf("initialize metrics: %w", err)
		}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}

	return &Datastore{
		stbl:             sq.StatementBuilder.RunWith(db),
		db:               db,
		logger:           log,
		dbStatsCollector: collector,
	}, nil
}

// Close see [storage.RelationshipStore].Close.
func (s *Datastore) Close() {
	if s.dbStatsCollector != nil {
		prometheus.Unregister(s.dbStatsCollector)
	}
	s.db.Close()
}

// GetUser see [storage.RelationshipStore].GetUser.
func (s *Datastore) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	ctx, span := startTrace(ctx, "GetUser")
	defer span.End()

	row := s.stbl.
		Select("id", "username", "name", "profile_private").
		From("users").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	var user storage.User
	if err := row.Scan(&user.ID, &user.Username, &user.Name, &user.ProfilePrivate); err != nil {
		return nil, HandleSQLError(err)
	}
	return &user, nil
}

// GetUserByUsername see [storage.RelationshipStore].GetUserByUsername.
func (s *Datastore) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	ctx, span := startTrace(ctx, "GetUserByUsername")
	defer span.End()

	row := s.stbl.
		Select("id", "username", "name", "profile_private").
		From("users").
		Where(sq.Eq{"username": username}).
		QueryRowContext(ctx)

	var user storage.User
	if err := row.Scan(&user.ID, &user.Username, &user.Name, &user.ProfilePrivate); err != nil {
		return nil, HandleSQLError(err)
	}
	return &user, nil
}

// GetCircle see [storage.RelationshipStore].GetCircle.
func (s *Datastore) GetCircle(ctx context.Context, id int64) (*storage.Circle, error) {
	ctx, span := startTrace(ctx, "GetCircle")
	defer span.End()

	row := s.stbl.
		Select("id", "creator_id", "name", "private").
		From("circles").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	var circle storage.Circle
	if err := row.Scan(&circle.ID, &circle.CreatorID, &circle.Name, &circle.Private); err != nil {
		return nil, HandleSQLError(err)
	}
	return &circle, nil
}

// GetAlbum see [storage.RelationshipStore].GetAlbum.
func (s *Datastore) GetAlbum(ctx context.Context, id int64) (*storage.Album, error) {
	ctx, span := startTrace(ctx, "GetAlbum")
	defer span.End()

	row := s.stbl.
		Select("id", "creator_id", "circle_id", "title", "private").
		From("albums").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	var album storage.Album
	if err := row.Scan(&album.ID, &album.CreatorID, &album.CircleID, &album.Title, &album.Private); err != nil {
		return nil, HandleSQLError(err)
	}
	return &album, nil
}

// GetMembership see [storage.RelationshipStore].GetMembership.
func (s *Datastore) GetMembership(ctx context.Context, userID, circleID int64) (*storage.Membership, error) {
	ctx, span := startTrace(ctx, "GetMembership")
	defer span.End()

	row := s.stbl.
		Select("user_id", "circle_id", "role").
		From("memberships").
		Where(sq.Eq{"user_id": userID, "circle_id": circleID}).
		QueryRowContext(ctx)

	var membership storage.Membership
	if err := row.Scan(&membership.UserID, &membership.CircleID, &membership.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// absence is an expected answer, not an error
			return nil, nil
		}
		return nil, HandleSQLError(err)
	}
	return &membership, nil
}

// ListFollowEdges see [storage.RelationshipStore].ListFollowEdges.
func (s *Datastore) ListFollowEdges(ctx context.Context, userID int64, direction storage.FollowDirection, targetIDs []int64) ([]*storage.Follow, error) {
	ctx, span := startTrace(ctx, "ListFollowEdges")
	defer span.End()

	sb := s.stbl.
		Select("follower_id", "following_id").
		From("follows")

	switch direction {
	case storage.FollowDirectionOutgoing:
		sb = sb.Where(sq.Eq{"follower_id": userID})
		if len(targetIDs) > 0 {
			sb = sb.Where(sq.Eq{"following_id": targetIDs})
		}
	case storage.FollowDirectionIncoming:
		sb = sb.Where(sq.Eq{"following_id": userID})
		if len(targetIDs) > 0 {
			sb = sb.Where(sq.Eq{"follower_id": targetIDs})
		}
	default:
		return nil, fmt.Errorf("%w: unknown follow direction %d", storage.ErrInvalidWriteInput, direction)
	}

	rows, err := sb.QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var edges []*storage.Follow
	for rows.Next() {
		var edge storage.Follow
		if err := rows.Scan(&edge.FollowerID, &edge.FollowingID); err != nil {
			return nil, HandleSQLError(err)
		}
		edges = append(edges, &edge)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return edges, nil
}

// GetUsers see [storage.RelationshipStore].GetUsers.
func (s *Datastore) GetUsers(ctx context.Context, ids []int64) ([]*storage.User, error) {
	ctx, span := startTrace(ctx, "GetUsers")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.stbl.
		Select("id", "username", "name", "profile_private").
		From("users").
		Where(sq.Eq{"id": ids}).
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var users []*storage.User
	for rows.Next() {
		var user storage.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Name, &user.ProfilePrivate); err != nil {
			return nil, HandleSQLError(err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return users, nil
}

// GetCircles see [storage.RelationshipStore].GetCircles.
func (s *Datastore) GetCircles(ctx context.Context, ids []int64) ([]*storage.Circle, error) {
	ctx, span := startTrace(ctx, "GetCircles")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.stbl.
		Select("id", "creator_id", "name", "private").
		From("circles").
		Where(sq.Eq{"id": ids}).
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var circles []*storage.Circle
	for rows.Next() {
		var circle storage.Circle
		if err := rows.Scan(&circle.ID, &circle.CreatorID, &circle.Name, &circle.Private); err != nil {
			return nil, HandleSQLError(err)
		}
		circles = append(circles, &circle)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return circles, nil
}

// GetAlbums see [storage.RelationshipStore].GetAlbums.
func (s *Datastore) GetAlbums(ctx context.Context, ids []int64) ([]*storage.Album, error) {
	ctx, span := startTrace(ctx, "GetAlbums")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.stbl.
		Select("id", "creator_id", "circle_id", "title", "private").
		From("albums").
		Where(sq.Eq{"id": ids}).
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var albums []*storage.Album
	for rows.Next() {
		var album storage.Album
		if err := rows.Scan(&album.ID, &album.CreatorID, &album.CircleID, &album.Title, &album.Private); err != nil {
			return nil, HandleSQLError(err)
		}
		albums = append(albums, &album)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return albums, nil
}

// ListMemberships see [storage.RelationshipStore].ListMemberships.
func (s *Datastore) ListMemberships(ctx context.Context, userID int64, circleIDs []int64) ([]*storage.Membership, error) {
	ctx, span := startTrace(ctx, "ListMemberships")
	defer span.End()

	if len(circleIDs) == 0 {
		return nil, nil
	}

	rows, err := s.stbl.
		Select("user_id", "circle_id", "role").
		From("memberships").
		Where(sq.Eq{"user_id": userID, "circle_id": circleIDs}).
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var memberships []*storage.Membership
	for rows.Next() {
		var membership storage.Membership
		if err := rows.Scan(&membership.UserID, &membership.CircleID, &membership.Role); err != nil {
			return nil, HandleSQLError(err)
		}
		memberships = append(memberships, &membership)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return memberships, nil
}

// ListAlbumLikes see [storage.RelationshipStore].ListAlbumLikes.
func (s *Datastore) ListAlbumLikes(ctx context.Context, userID int64, albumIDs []int64) ([]*storage.AlbumLike, error) {
	ctx, span := startTrace(ctx, "ListAlbumLikes")
	defer span.End()

	if len(albumIDs) == 0 {
		return nil, nil
	}

	rows, err := s.stbl.
		Select("user_id", "album_id").
		From("album_likes").
		Where(sq.Eq{"user_id": userID, "album_id": albumIDs}).
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var likes []*storage.AlbumLike
	for rows.Next() {
		var like storage.AlbumLike
		if err := rows.Scan(&like.UserID, &like.AlbumID); err != nil {
			return nil, HandleSQLError(err)
		}
		likes = append(likes, &like)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return likes, nil
}

// CreateUser see [storage.RelationshipWriter].CreateUser.
func (s *Datastore) CreateUser(ctx context.Context, user *storage.User) error {
	ctx, span := startTrace(ctx, "CreateUser")
	defer span.End()

	return busyRetry(func() error {
		sb := s.stbl.Insert("users")
		if user.ID != 0 {
			sb = sb.
				Columns("id", "username", "name", "profile_private").
				Values(user.ID, user.Username, user.Name, user.ProfilePrivate)
		} else {
			sb = sb.
				Columns("username", "name", "profile_private").
				Values(user.Username, user.Name, user.ProfilePrivate)
		}

		res, err := sb.ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		if user.ID == 0 {
			user.ID, err = res.LastInsertId()
			if err != nil {
				return HandleSQLError(err)
			}
		}
		return nil
	})
}

// CreateCircle see [storage.RelationshipWriter].CreateCircle.
func (s *Datastore) CreateCircle(ctx context.Context, circle *storage.Circle) error {
	ctx, span := startTrace(ctx, "CreateCircle")
	defer span.End()

	return busyRetry(func() error {
		sb := s.stbl.Insert("circles")
		if circle.ID != 0 {
			sb = sb.
				Columns("id", "creator_id", "name", "private").
				Values(circle.ID, circle.CreatorID, circle.Name, circle.Private)
		} else {
			sb = sb.
				Columns("creator_id", "name", "private").
				Values(circle.CreatorID, circle.Name, circle.Private)
		}

		res, err := sb.ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		if circle.ID == 0 {
			circle.ID, err = res.LastInsertId()
			if err != nil {
				return HandleSQLError(err)
			}
		}
		return nil
	})
}

// CreateAlbum see [storage.RelationshipWriter].CreateAlbum.
func (s *Datastore) CreateAlbum(ctx context.Context, album *storage.Album) error {
	ctx, span := startTrace(ctx, "CreateAlbum")
	defer span.End()

	return busyRetry(func() error {
		sb := s.stbl.Insert("albums")
		if album.ID != 0 {
			sb = sb.
				Columns("id", "creator_id", "circle_id", "title", "private").
				Values(album.ID, album.CreatorID, album.CircleID, album.Title, album.Private)
		} else {
			sb = sb.
				Columns("creator_id", "circle_id", "title", "private").
				Values(album.CreatorID, album.CircleID, album.Title, album.Private)
		}

		res, err := sb.ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		if album.ID == 0 {
			album.ID, err = res.LastInsertId()
			if err != nil {
				return HandleSQLError(err)
			}
		}
		return nil
	})
}

// UpdateUser see [storage.RelationshipWriter].UpdateUser. The username is
// an immutable lookup key; updates carrying a different username return
// ErrInvalidWriteInput.
func (s *Datastore) UpdateUser(ctx context.Context, user *storage.User) error {
	ctx, span := startTrace(ctx, "UpdateUser")
	defer span.End()

	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing.Username != user.Username {
		return storage.ErrInvalidWriteInput
	}

	return busyRetry(func() error {
		_, err := s.stbl.
			Update("users").
			Set("name", user.Name).
			Set("profile_private", user.ProfilePrivate).
			Where(sq.Eq{"id": user.ID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// UpdateCircle see [storage.RelationshipWriter].UpdateCircle.
func (s *Datastore) UpdateCircle(ctx context.Context, circle *storage.Circle) error {
	ctx, span := startTrace(ctx, "UpdateCircle")
	defer span.End()

	return busyRetry(func() error {
		res, err := s.stbl.
			Update("circles").
			Set("creator_id", circle.CreatorID).
			Set("name", circle.Name).
			Set("private", circle.Private).
			Where(sq.Eq{"id": circle.ID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return errNotFoundUnlessAffected(res)
	})
}

// UpdateAlbum see [storage.RelationshipWriter].UpdateAlbum.
func (s *Datastore) UpdateAlbum(ctx context.Context, album *storage.Album) error {
	ctx, span := startTrace(ctx, "UpdateAlbum")
	defer span.End()

	return busyRetry(func() error {
		res, err := s.stbl.
			Update("albums").
			Set("creator_id", album.CreatorID).
			Set("circle_id", album.CircleID).
			Set("title", album.Title).
			Set("private", album.Private).
			Where(sq.Eq{"id": album.ID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return errNotFoundUnlessAffected(res)
	})
}

// WriteFollow see [storage.RelationshipWriter].WriteFollow.
func (s *Datastore) WriteFollow(ctx context.Context, followerID, followingID int64) error {
	ctx, span := startTrace(ctx, "WriteFollow")
	defer span.End()

	if followerID == followingID {
		return storage.ErrInvalidWriteInput
	}

	return busyRetry(func() error {
		_, err := s.stbl.
			Insert("follows").
			Options("OR IGNORE").
			Columns("follower_id", "following_id").
			Values(followerID, followingID).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// DeleteFollow see [storage.RelationshipWriter].DeleteFollow.
func (s *Datastore) DeleteFollow(ctx context.Context, followerID, followingID int64) error {
	ctx, span := startTrace(ctx, "DeleteFollow")
	defer span.End()

	return busyRetry(func() error {
		_, err := s.stbl.
			Delete("follows").
			Where(sq.Eq{"follower_id": followerID, "following_id": followingID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// WriteMembership see [storage.RelationshipWriter].WriteMembership.
func (s *Datastore) WriteMembership(ctx context.Context, userID, circleID int64, role storage.Role) error {
	ctx, span := startTrace(ctx, "WriteMembership")
	defer span.End()

	return busyRetry(func() error {
		_, err := s.stbl.
			Insert("memberships").
			Columns("user_id", "circle_id", "role").
			Values(userID, circleID, string(role)).
			Suffix("ON CONFLICT (user_id, circle_id) DO UPDATE SET role = excluded.role").
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// DeleteMembership see [storage.RelationshipWriter].DeleteMembership.
func (s *Datastore) DeleteMembership(ctx context.Context, userID, circleID int64) error {
	ctx, span := startTrace(ctx, "DeleteMembership")
	defer span.End()

	return busyRetry(func() error {
		_, err := s.stbl.
			Delete("memberships").
			Where(sq.Eq{"user_id": userID, "circle_id": circleID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// WriteAlbumLike see [storage.RelationshipWriter].WriteAlbumLike.
func (s *Datastore) WriteAlbumLike(ctx context.Context, userID, albumID int64) error {
	ctx, span := startTrace(ctx, "WriteAlbumLike")
	defer span.End()

	return busyRetry(func() error {
		_, err := s.stbl.
			Insert("album_likes").
			Options("OR IGNORE").
			Columns("user_id", "album_id").
			Values(userID, albumID).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

// DeleteAlbumLike see [storage.RelationshipWriter].DeleteAlbumLike.
func (s *Datastore) DeleteAlbumLike(ctx context.Context, userID, albumID int64) error {
	ctx, span := startTrace(ctx, "DeleteAlbumLike")
	defer span.End()

	return busyRetry(func() error {
		_, err := s.stbl.
			Delete("album_likes").
			Where(sq.Eq{"user_id": userID, "album_id": albumID}).
			ExecContext(ctx)
		if err != nil {
			return HandleSQLError(err)
		}
		return nil
	})
}

func errNotFoundUnlessAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return HandleSQLError(err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HandleSQLError maps driver errors to the storage error taxonomy.
func HandleSQLError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return storage.ErrCancelled
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code()&0xFF == sqlite3.SQLITE_CONSTRAINT {
			return storage.ErrCollision
		}
	}

	return fmt.Errorf("sql error: %w", err)
}

// SQLite returns an SQLITE_BUSY error when the database is locked rather
// than waiting for the lock. Retry the operation a bounded number of
// times before surfacing the error.
func busyRetry(fn func() error) error {
	const maxRetries = 10
	for retries := 0; ; retries++ {
		err := fn()
		if err == nil {
			return nil
		}

		if isBusyError(err) {
			if retries < maxRetries {
				continue
			}

			return fmt.Errorf("sqlite busy error after %d retries: %w", maxRetries, err)
		}

		return err
	}
}

var busyErrors = map[int]struct{}{
	sqlite3.SQLITE_BUSY_RECOVERY:      {},
	sqlite3.SQLITE_BUSY_SNAPSHOT:      {},
	sqlite3.SQLITE_BUSY_TIMEOUT:       {},
	sqlite3.SQLITE_BUSY:               {},
	sqlite3.SQLITE_LOCKED_SHAREDCACHE: {},
	sqlite3.SQLITE_LOCKED:             {},
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	_, ok := busyErrors[sqliteErr.Code()]
	return ok
}
