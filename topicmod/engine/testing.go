package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/horizonte-social/charla/topicmod/admingate"
	"github.com/horizonte-social/charla/topicmod/counterstore"
	"github.com/horizonte-social/charla/topicmod/keyword"
	"github.com/horizonte-social/charla/topicmod/rategate"
)

// MockSink records deletes and replies for assertions. DeleteResult and
// DeleteErr are returned from every DeleteMessage call.
type MockSink struct {
	lk           sync.Mutex
	DeleteResult DeleteResult
	DeleteErr    error
	deleted      [][2]any
	replies      []string
}

func (s *MockSink) DeleteMessage(ctx context.Context, chatID string, messageID int) (DeleteResult, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.deleted = append(s.deleted, [2]any{chatID, messageID})
	return s.DeleteResult, s.DeleteErr
}

func (s *MockSink) Reply(ctx context.Context, chatID string, text string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.replies = append(s.replies, text)
	return nil
}

func (s *MockSink) Deleted() [][2]any {
	s.lk.Lock()
	defer s.lk.Unlock()
	out := make([][2]any, len(s.deleted))
	copy(out, s.deleted)
	return out
}

func (s *MockSink) Replies() []string {
	s.lk.Lock()
	defer s.lk.Unlock()
	out := make([]string, len(s.replies))
	copy(out, s.replies)
	return out
}

type mockMembers struct {
	admins map[int64]bool
	err    error
}

func (m *mockMembers) RoleOf(ctx context.Context, chatID string, userID int64) (admingate.Role, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.admins[userID] {
		return admingate.RoleAdministrator, nil
	}
	return admingate.RoleMember, nil
}

// EngineTestFixture builds an engine over in-memory stores watching the
// terms "kerem" and "inombrable", with threshold 3, no decay window, 1h
// cooldown, and user 1 as the only group admin.
func EngineTestFixture() (*Engine, *MockSink) {
	sink := &MockSink{}
	eng := &Engine{
		Logger:  slog.Default(),
		Matcher: keyword.NewMatcher([]string{"kerem", "inombrable"}),
		Gate: &rategate.Gate{
			Threshold: 3,
			Cooldown:  time.Hour,
			Counters:  counterstore.NewMemCounterStore(),
		},
		Admins: admingate.NewGate(&mockMembers{admins: map[int64]bool{1: true}}, nil),
		Sink:   sink,
	}
	return eng, sink
}
