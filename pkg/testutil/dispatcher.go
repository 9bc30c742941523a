package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/taskmaster/internal/model"
)

type SentMessage struct {
	ChannelID    int64
	UserID       int64
	MessageID    int64
	Announcement model.Announcement
}

// MockDispatcher records every message. The Func fields override the default
// behavior, which is to succeed.
type MockDispatcher struct {
	PostAnnouncementFunc func(ctx context.Context, channelID int64, a model.Announcement) (int64, error)
	EditAnnouncementFunc func(ctx context.Context, channelID, messageID int64, a model.Announcement) error
	UpdateFieldFunc      func(ctx context.Context, channelID, messageID int64, field model.AnnouncementField) error
	GrantRoleFunc        func(ctx context.Context, userID, roleID int64) error
	SendDirectFunc       func(ctx context.Context, userID int64, a model.Announcement) error

	mutex   sync.Mutex
	nextID  int64
	Posted  []SentMessage
	Edited  []SentMessage
	Fields  []model.AnnouncementField
	Direct  []SentMessage
	Granted [][2]int64
}

func (m *MockDispatcher) PostAnnouncement(ctx context.Context, channelID int64, a model.Announcement) (int64, error) {
	if m.PostAnnouncementFunc != nil {
		if _, err := m.PostAnnouncementFunc(ctx, channelID, a); err != nil {
			return 0, err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextID++
	messageID := 900000 + m.nextID
	m.Posted = append(m.Posted, SentMessage{ChannelID: channelID, MessageID: messageID, Announcement: a})
	return messageID, nil
}

func (m *MockDispatcher) PostReminder(ctx context.Context, channelID int64, a model.Announcement) error {
	_, err := m.PostAnnouncement(ctx, channelID, a)
	return err
}

func (m *MockDispatcher) EditAnnouncement(ctx context.Context, channelID, messageID int64, a model.Announcement) error {
	if m.EditAnnouncementFunc != nil {
		if err := m.EditAnnouncementFunc(ctx, channelID, messageID, a); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Edited = append(m.Edited, SentMessage{ChannelID: channelID, MessageID: messageID, Announcement: a})
	return nil
}

func (m *MockDispatcher) UpdateField(
	ctx context.Context, channelID, messageID int64, field model.AnnouncementField,
) error {
	if m.UpdateFieldFunc != nil {
		if err := m.UpdateFieldFunc(ctx, channelID, messageID, field); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Fields = append(m.Fields, field)
	return nil
}

func (m *MockDispatcher) GrantRole(ctx context.Context, userID, roleID int64) error {
	if m.GrantRoleFunc != nil {
		if err := m.GrantRoleFunc(ctx, userID, roleID); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Granted = append(m.Granted, [2]int64{userID, roleID})
	return nil
}

func (m *MockDispatcher) SendDirect(ctx context.Context, userID int64, a model.Announcement) error {
	if m.SendDirectFunc != nil {
		if err := m.SendDirectFunc(ctx, userID, a); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Direct = append(m.Direct, SentMessage{UserID: userID, Announcement: a})
	return nil
}

// PostedTo returns the messages posted to channelID.
func (m *MockDispatcher) PostedTo(channelID int64) []SentMessage {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := []SentMessage{}
	for _, msg := range m.Posted {
		if msg.ChannelID == channelID {
			result = append(result, msg)
		}
	}

	return result
}
