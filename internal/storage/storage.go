package storage

import (
	"batepapo/backend/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Storage is the document store behind the participant registry and the
// message history. Every failure wraps models.ErrStoreUnavailable unless it
// is one of the domain errors documented on the method.
type Storage interface {
	// InsertParticipant returns models.ErrConflict when the name is taken.
	InsertParticipant(ctx context.Context, p *models.Participant) error
	// FindParticipantByName returns nil without error when no record exists.
	FindParticipantByName(ctx context.Context, name string) (*models.Participant, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	// UpdateParticipantLastStatus reports whether a record was updated.
	UpdateParticipantLastStatus(ctx context.Context, name string, lastStatus int64) (bool, error)
	// DeleteParticipantByID returns models.ErrNotFound when nothing was deleted.
	DeleteParticipantByID(ctx context.Context, id string) error

	InsertMessage(ctx context.Context, msg *models.Message) error
	// FindAllMessages returns the full history in insertion order.
	FindAllMessages(ctx context.Context) ([]models.Message, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   zerolog.Logger
}

// NewStorageService Constructor. rdb may be nil when no broker is configured.
func NewStorageService(db *gorm.DB, rdb *redis.Client, log zerolog.Logger) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Log:   log.With().Str("component", "storage").Logger(),
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}

// InsertParticipant creates the participant record. The unique index on
// name turns a concurrent duplicate join into models.ErrConflict.
func (s *Service) InsertParticipant(ctx context.Context, p *models.Participant) error {
	err := s.DB.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrConflict
	}
	if err != nil {
		return unavailable("insert participant", err)
	}
	return nil
}

func (s *Service) FindParticipantByName(ctx context.Context, name string) (*models.Participant, error) {
	var p models.Participant
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find participant", err)
	}
	return &p, nil
}

func (s *Service) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	participants := []models.Participant{}
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&participants).Error; err != nil {
		return nil, unavailable("list participants", err)
	}
	return participants, nil
}

func (s *Service) UpdateParticipantLastStatus(ctx context.Context, name string, lastStatus int64) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Participant{}).
		Where("name = ?", name).
		Update("last_status", lastStatus)
	if res.Error != nil {
		return false, unavailable("update participant", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) DeleteParticipantByID(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Participant{})
	if res.Error != nil {
		return unavailable("delete participant", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InsertMessage appends msg to the history; msg.ID is filled by the store.
func (s *Service) InsertMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return unavailable("insert message", err)
	}
	return nil
}

func (s *Service) FindAllMessages(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&messages).Error; err != nil {
		return nil, unavailable("find messages", err)
	}
	return messages, nil
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database pool and the Redis client.
func (s *Service) Close() error {
	var errs []error
	if sqlDB, err := s.DB.DB(); err != nil {
		errs = append(errs, err)
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
