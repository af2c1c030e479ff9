package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/commerce"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/discount"
	"github.com/jafarshop/storefront/internal/loyalty"
)

const (
	sessionContextKey = "storefront_session"
	// GuestSessionHeader carries the session handle for shoppers without an
	// account token.
	GuestSessionHeader = "X-Guest-Session"
)

// Session bundles one shopper's checkout state: their upstream client and
// the stores built on it. All wizard access goes through Lock/Unlock since
// gin may run requests for the same shopper concurrently.
type Session struct {
	ID      string
	Guest   bool
	Client  *commerce.Client
	Cart    *cart.Store
	Loyalty *loyalty.Redeemer
	Wizard  *checkout.Wizard

	mu       sync.Mutex
	lastSeen time.Time
}

// Lock takes the session's serialization lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's serialization lock.
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) close() {
	s.Cart.Close()
	s.Loyalty.Close()
}

// SessionManager keeps one Session per shopper token (or guest handle) and
// expires idle ones.
type SessionManager struct {
	cfg    *config.Config
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager builds a manager and starts its expiry sweep.
func NewSessionManager(cfg *config.Config, logger *zap.Logger) *SessionManager {
	m := &SessionManager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Resolve returns the session for the given key, creating it on first use.
func (m *SessionManager) Resolve(key string, token string, guest bool) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		s.lastSeen = time.Now()
		return s
	}

	client := commerce.NewClient(m.cfg.Upstream, token, m.logger)
	store := cart.NewStore(client, m.cfg.Checkout.DebounceDelay, m.logger)
	resolver := discount.NewResolver(client, m.logger)
	redeemer := loyalty.NewRedeemer(client, m.cfg.Checkout.PointValue, m.cfg.Checkout.DebounceDelay, m.logger)
	wizard := checkout.NewWizard(store, resolver, redeemer, client, m.cfg.Checkout.ShippingFee, guest, m.logger)

	s := &Session{
		ID:       key,
		Guest:    guest,
		Client:   client,
		Cart:     store,
		Loyalty:  redeemer,
		Wizard:   wizard,
		lastSeen: time.Now(),
	}
	m.sessions[key] = s
	m.logger.Info("session created", zap.String("session_id", key), zap.Bool("guest", guest))
	return s
}

// Drop removes a session, e.g. after its order was submitted.
func (m *SessionManager) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		s.close()
		delete(m.sessions, key)
	}
}

// Close stops the sweep and releases every session.
func (m *SessionManager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.sessions {
		s.close()
		delete(m.sessions, key)
	}
}

func (m *SessionManager) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, s := range m.sessions {
				if now.Sub(s.lastSeen) > m.cfg.Checkout.SessionTTL {
					s.close()
					delete(m.sessions, key)
					m.logger.Info("session expired", zap.String("session_id", key))
				}
			}
			m.mu.Unlock()
		}
	}
}

// SessionMiddleware resolves the shopper's session from the Authorization
// bearer token, or from (or into) the guest session header when there is
// none.
func SessionMiddleware(mgr *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session *Session

		auth := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			session = mgr.Resolve("user:"+token, token, false)
		} else {
			handle := c.GetHeader(GuestSessionHeader)
			if handle == "" {
				handle = uuid.NewString()
			}
			c.Header(GuestSessionHeader, handle)
			session = mgr.Resolve("guest:"+handle, "", true)
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSessionFromContext retrieves the session placed by SessionMiddleware.
func GetSessionFromContext(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}
