// Package postgres stores zettels in PostgreSQL through GORM.
//
// The schema is created with AutoMigrate on Open. Searches use the POSIX
// regular expression operator (~), after the query has been checked with
// Go's regexp package so invalid patterns surface as
// storage.ErrInvalidPattern instead of a database error.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Trangar/zettelkasten/internal/logging"
	"github.com/Trangar/zettelkasten/internal/storage"
)

var log = logging.New("postgres")

type userRow struct {
	ID                int64  `gorm:"column:user_id;primaryKey;autoIncrement"`
	Username          string `gorm:"uniqueIndex;not null"`
	Password          string `gorm:"not null"`
	LastVisitedZettel *int64
}

func (userRow) TableName() string { return "users" }

func (u userRow) toUser() storage.User {
	out := storage.User{ID: storage.UserID(u.ID), Name: u.Username, PasswordHash: u.Password}
	if u.LastVisitedZettel != nil {
		out.LastVisitedZettel = storage.ZettelID(*u.LastVisitedZettel)
	}
	return out
}

type zettelRow struct {
	ID             int64     `gorm:"column:zettel_id;primaryKey;autoIncrement"`
	UserID         int64     `gorm:"not null;uniqueIndex:idx_zettel_user_path"`
	Path           string    `gorm:"not null;uniqueIndex:idx_zettel_user_path"`
	Body           string    `gorm:"not null;default:''"`
	CreatedOn      time.Time `gorm:"autoCreateTime"`
	LastModifiedOn time.Time `gorm:"autoUpdateTime"`
}

func (zettelRow) TableName() string { return "zettel" }

func (z zettelRow) toZettel() storage.Zettel {
	return storage.Zettel{ID: storage.ZettelID(z.ID), Path: z.Path, Body: z.Body}
}

type configRow struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (configRow) TableName() string { return "config" }

// Store is a storage.Storage backed by PostgreSQL.
type Store struct {
	db   *gorm.DB
	cost int
}

var _ storage.Storage = (*Store)(nil)

// Option customises Open.
type Option func(*Store)

// WithBcryptCost sets the cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// Open connects to dsn, migrates the schema and seeds the default config.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := &Store{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&userRow{}, &zettelRow{}, &configRow{}); err != nil {
		s.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	if err := s.seedConfig(ctx); err != nil {
		s.Close()
		return nil, err
	}
	log.Info("opened database")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) seedConfig(ctx context.Context) error {
	rows, err := storage.ConfigRows(storage.DefaultSystemConfig())
	if err != nil {
		return err
	}
	for key, value := range rows {
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&configRow{Key: key, Value: value}).Error
		if err != nil {
			return fmt.Errorf("postgres: seed config %q: %w", key, err)
		}
	}
	return nil
}

func (s *Store) UserCount(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("postgres: count users: %w", err)
	}
	return int(n), nil
}

func (s *Store) LoginSingleUser(ctx context.Context) (storage.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Order("user_id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.User{}, fmt.Errorf("postgres: login single user: %w", storage.ErrNotFound)
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("postgres: login single user: %w", err)
	}
	return row.toUser(), nil
}

func (s *Store) Login(ctx context.Context, username, password string) (storage.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.User{}, storage.ErrCredentialMismatch
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("postgres: login: %w", err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(row.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return storage.User{}, storage.ErrCredentialMismatch
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("postgres: verify password: %w", err)
	}
	return row.toUser(), nil
}

func (s *Store) Register(ctx context.Context, username, password string) (storage.User, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return storage.User{}, fmt.Errorf("postgres: register: %w", err)
	}
	if n != 0 {
		return storage.User{}, storage.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("postgres: hash password: %w", err)
	}
	row := userRow{Username: username, Password: string(hash)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.User{}, storage.ErrUserExists
		}
		return storage.User{}, fmt.Errorf("postgres: register: %w", err)
	}
	log.Info("registered user", "user", username)
	return row.toUser(), nil
}

func (s *Store) GetNoteByID(ctx context.Context, user storage.UserID, id storage.ZettelID) (storage.Zettel, error) {
	var row zettelRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND zettel_id = ?", int64(user), int64(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.Zettel{}, fmt.Errorf("postgres: zettel %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Zettel{}, fmt.Errorf("postgres: get zettel %d: %w", id, err)
	}
	return row.toZettel(), nil
}

func (s *Store) GetNoteByPath(ctx context.Context, user storage.UserID, path string) (storage.Zettel, error) {
	var row zettelRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND path = ?", int64(user), path).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.Zettel{}, fmt.Errorf("postgres: zettel %q: %w", path, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Zettel{}, fmt.Errorf("postgres: get zettel %q: %w", path, err)
	}
	return row.toZettel(), nil
}

func (s *Store) ListOrSearchNotes(ctx context.Context, user storage.UserID, opts storage.SearchOpts) ([]storage.ZettelHeader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", int64(user)).Order("path ASC")
	if opts.ListAll {
		var rows []zettelRow
		if err := q.Select("zettel_id", "path").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("postgres: list zettels: %w", err)
		}
		out := make([]storage.ZettelHeader, 0, len(rows))
		for _, r := range rows {
			out = append(out, storage.ZettelHeader{ID: storage.ZettelID(r.ID), Path: r.Path})
		}
		return out, nil
	}

	re, err := storage.CompilePattern(opts.Query)
	if err != nil {
		return nil, err
	}
	var rows []zettelRow
	if err := q.Where("(body ~ ? OR path ~ ?)", opts.Query, opts.Query).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: search zettels: %w", err)
	}
	out := make([]storage.ZettelHeader, 0, len(rows))
	for _, r := range rows {
		out = append(out, storage.ZettelHeader{
			ID:        storage.ZettelID(r.ID),
			Path:      r.Path,
			Highlight: storage.Excerpt(re, r.Body),
		})
	}
	return out, nil
}

func (s *Store) SaveNote(ctx context.Context, user storage.UserID, zettel *storage.Zettel) error {
	if !zettel.IsNew() {
		res := s.db.WithContext(ctx).Model(&zettelRow{}).
			Where("zettel_id = ? AND user_id = ?", int64(zettel.ID), int64(user)).
			Updates(map[string]any{"path": zettel.Path, "body": zettel.Body, "last_modified_on": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("postgres: update zettel %d: %w", zettel.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("postgres: update zettel %d: %w", zettel.ID, storage.ErrNotFound)
		}
		return nil
	}

	row := zettelRow{UserID: int64(user), Path: zettel.Path, Body: zettel.Body}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert zettel %q: %w", zettel.Path, err)
		}
		if err := tx.Model(&userRow{}).Where("user_id = ?", int64(user)).
			Update("last_visited_zettel", row.ID).Error; err != nil {
			return fmt.Errorf("set last visited: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	zettel.ID = storage.ZettelID(row.ID)
	return nil
}

func (s *Store) SetLastVisitedNote(ctx context.Context, user storage.UserID, id storage.ZettelID) error {
	var value *int64
	if id != 0 {
		v := int64(id)
		value = &v
	}
	err := s.db.WithContext(ctx).Model(&userRow{}).Where("user_id = ?", int64(user)).
		Update("last_visited_zettel", value).Error
	if err != nil {
		return fmt.Errorf("postgres: set last visited: %w", err)
	}
	return nil
}

func (s *Store) UpdateSystemConfig(ctx context.Context, cfg storage.SystemConfig) error {
	rows, err := storage.ConfigRows(cfg)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range rows {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&configRow{Key: key, Value: value}).Error
			if err != nil {
				return fmt.Errorf("postgres: update config %q: %w", key, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadSystemConfig(ctx context.Context) (storage.SystemConfig, error) {
	var rows []configRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return storage.SystemConfig{}, fmt.Errorf("postgres: load config: %w", err)
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return storage.ParseConfigRows(values)
}
