//go:build integration

package session_test

import (
	"sync"
	"testing"

	"ragdesk/internal/session"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type SessionLifecycleSuite struct {
	suite.Suite
	dir   string
	store *session.Store
}

func (s *SessionLifecycleSuite) SetupTest() {
	s.dir = s.T().TempDir()

	var err error
	s.store, err = session.Open(s.dir)
	s.Require().NoError(err)
}

// TestFullLifecycle walks the credential store through a complete login,
// reopen, and logout cycle as the TUI and CLI would drive it.
func (s *SessionLifecycleSuite) TestFullLifecycle() {
	s.Require().NoError(s.store.SetToken("integration-token"))
	s.Require().NoError(s.store.SetEmail("it@example.com"))

	reopened, err := session.Open(s.dir)
	s.Require().NoError(err)
	s.Equal("integration-token", reopened.Token())
	s.Equal("it@example.com", reopened.Email())

	s.Require().NoError(reopened.Logout())

	final, err := session.Open(s.dir)
	s.Require().NoError(err)
	s.Empty(final.Token())
	s.Empty(final.Email())
}

// TestConcurrentReaders exercises the store the way the gateway does: many
// token reads racing a login write.
func (s *SessionLifecycleSuite) TestConcurrentReaders() {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.store.Token()
				_ = s.store.Email()
			}
		}()
	}
	s.Require().NoError(s.store.SetToken("racing"))
	wg.Wait()
	s.Equal("racing", s.store.Token())
}

func TestSessionLifecycleSuite(t *testing.T) {
	defer goleak.VerifyNone(t)
	suite.Run(t, new(SessionLifecycleSuite))
}
