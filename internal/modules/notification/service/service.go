package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/notevault/internal/entity"
	notifRepo "anoa.com/notevault/internal/modules/notification/repository"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

type NotificationService interface {
	Notify(ctx context.Context, notification *entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[entity.Notification], error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *logger.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *logger.Logger) NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

// Notify persists the notification and then publishes it for live listeners.
// A failed publish is logged; the stored row is the source of truth.
func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		s.log.Warn("failed to encode notification", "notification_id", notification.ID, "error", err)
		return nil
	}
	if err := s.redisClient.Publish(ctx, Channel(notification.UserID.String()), payload).Err(); err != nil {
		s.log.Warn("failed to publish notification", "user_id", notification.UserID, "error", err)
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, q commonDto.PageQuery) (*commonDto.Paginated[entity.Notification], error) {
	p := pagination.FromQuery(q)
	items, total, err := s.repo.GetByUserID(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	page := pagination.Page(items, total, p)
	return &page, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
