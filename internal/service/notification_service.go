package service

import (
	"context"
	"time"

	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
)

// Note is one notification to deliver to a profile.
type Note struct {
	UserUID         string
	Type            model.NotificationType
	Title           string
	Body            string
	VideoID         *uint64
	PayoutRequestID *uint64
}

// InboxQuery filters a user's notifications.
type InboxQuery struct {
	UnreadOnly      bool
	Type            model.NotificationType
	PayoutRequestID uint64
	Limit           int
}

type NotificationService interface {
	Notify(ctx context.Context, n Note)
	List(ctx context.Context, userUID string, q InboxQuery) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userUID string, ids []uint64) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	settings
}

func NewNotificationService(repo repository.NotificationRepository, opts ...Option) NotificationService {
	return &notificationService{repo: repo, settings: newSettings(opts)}
}

// Notify is best-effort. It runs after money has moved, so a failure is logged and never returned.
func (s *notificationService) Notify(ctx context.Context, n Note) {
	if n.UserUID == "" || n.Type == "" {
		return
	}
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()
	created, err := s.repo.Create(ctx, &model.Notification{
		UserUID:         n.UserUID,
		Type:            n.Type,
		Title:           n.Title,
		Body:            n.Body,
		VideoID:         n.VideoID,
		PayoutRequestID: n.PayoutRequestID,
	})
	switch {
	case err != nil:
		s.logger.Warn("notification write failed", "type", n.Type, "err", err)
	case !created:
		s.logger.Debug("notification already sent", "type", n.Type, "payout_request_id", n.PayoutRequestID)
	}
}

func (s *notificationService) List(ctx context.Context, userUID string, q InboxQuery) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, ErrUnauthenticated
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, 0, withMessage(ErrInvalidInput, "unknown notification type")
	}
	list, err := s.repo.List(ctx, repository.NotificationQuery{
		UserUID:         userUID,
		UnreadOnly:      q.UnreadOnly,
		Type:            q.Type,
		PayoutRequestID: q.PayoutRequestID,
		Limit:           q.Limit,
	})
	if err != nil {
		return nil, 0, dependency("failed to fetch notifications", err)
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return nil, 0, dependency("failed to count notifications", err)
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userUID string, ids []uint64) (int64, error) {
	if userUID == "" {
		return 0, ErrUnauthenticated
	}
	n, err := s.repo.MarkRead(ctx, userUID, ids)
	if err != nil {
		return 0, dependency("failed to mark read", err)
	}
	return n, nil
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

// withShortDeadline detaches follow-up writes from the request so a client hang-up or
// an expired request deadline does not drop them, but still bounds each write.
func withShortDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
}
