package notifications

import (
	"errors"
	"fmt"
	"time"

	"devtogether/internal/engine/access"
	"devtogether/internal/pkg/ids"
	"devtogether/internal/pkg/metrics"
)

var ErrInvalidType = errors.New("unknown notification type")

// Item is a notification prepared for a notification list: where it leads and how to show it.
type Item struct {
	*Notification
	Navigation NavigationResult `json:"navigation"`
	URL        string           `json:"url"`
	Context    Context          `json:"context"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Notify stores a new unread notification for userID.
func (s *Service) Notify(userID string, typ Type, title, message string, data Data) (*Notification, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if data == nil {
		data = Data{}
	}

	n := &Notification{
		ID:        ids.New("ntf_"),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(facts access.SessionFacts, unreadOnly bool, limit, offset int) ([]Item, error) {
	list, err := s.repo.ListByUser(facts.UserID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(list))
	for _, n := range list {
		items = append(items, Decorate(n, facts))
	}
	return items, nil
}

func (s *Service) UnreadCount(userID string) (int, error) {
	return s.repo.UnreadCount(userID)
}

// Open resolves the notification's destination for the viewer and marks it read.
func (s *Service) Open(facts access.SessionFacts, id string) (*Item, error) {
	n, err := s.repo.GetByID(facts.UserID, id)
	if err != nil {
		return nil, err
	}
	if !n.Read {
		if err := s.repo.MarkRead(facts.UserID, id); err != nil {
			return nil, err
		}
		n.Read = true
	}

	item := Decorate(n, facts)
	metrics.ObserveResolution(string(n.Type), item.Navigation.External)
	return &item, nil
}

func (s *Service) MarkRead(userID, id string) error {
	return s.repo.MarkRead(userID, id)
}

func (s *Service) MarkAllRead(userID string) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

// PurgeRead removes read notifications older than retention.
func (s *Service) PurgeRead(retention time.Duration) (int64, error) {
	return s.repo.PurgeRead(time.Now().Add(-retention).Unix())
}

// Decorate resolves and classifies n for the viewer described by facts.
// Legacy admins without the admin role route like admins.
func Decorate(n *Notification, facts access.SessionFacts) Item {
	role := facts.Role
	if facts.Admin {
		role = access.RoleAdmin
	}
	nav := Resolve(n, role, facts.UserID)
	return Item{
		Notification: n,
		Navigation:   nav,
		URL:          BuildNavigationURL(nav),
		Context:      Classify(n),
	}
}
