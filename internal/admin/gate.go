// File path: internal/admin/gate.go
package admin

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/nicodishanthj/timebank/internal/common"
	"github.com/nicodishanthj/timebank/internal/common/telemetry"
)

const (
	// TokenHeader carries the shared admin secret.
	TokenHeader = "admin_token"
	// ForwardedForHeader identifies the client behind a proxy.
	ForwardedForHeader = "X-Forwarded-For"
	// MaxStrikes is the number of failed attempts after which a client is banned.
	MaxStrikes = 3
)

// Kind enumerates the gate rejections.
type Kind int

const (
	KindAuthMissing Kind = iota + 1
	KindAuthInvalid
	KindBanned
)

func (k Kind) String() string {
	switch k {
	case KindAuthMissing:
		return "auth_missing"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// Error is returned when the gate rejects a request.
type Error struct {
	Kind    Kind
	Client  string
	Message string
}

func (e *Error) Error() string { return e.Message }

// StatusCode maps a gate rejection to its HTTP status.
func (e *Error) StatusCode() int {
	if e.Kind == KindBanned {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// Gate counts failed authentication attempts per client and refuses clients
// that reached MaxStrikes. Strikes are never cleared while the process runs.
type Gate struct {
	secret string

	mu      sync.Mutex
	strikes map[string]int
}

// NewGate returns a gate that accepts requests carrying secret.
func NewGate(secret string) *Gate {
	return &Gate{secret: secret, strikes: make(map[string]int)}
}

// Authorize checks a request from client. present reports whether the token
// header was sent at all. A nil error means the caller may proceed; the
// strike count is left untouched in that case.
func (g *Gate) Authorize(client, token string, present bool) error {
	strikes, err := g.check(client, token, present)
	if err == nil {
		return nil
	}
	if err.Kind == KindBanned {
		telemetry.RecordBannedRequest()
	} else {
		telemetry.RecordStrike()
	}
	common.Logger().Warn("admin: request rejected", "client", client, "reason", err.Kind.String(), "strikes", strikes)
	return err
}

// check runs the lookup and the increment as one critical section.
func (g *Gate) check(client, token string, present bool) (int, *Error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := g.strikes[client]
	switch {
	case count >= MaxStrikes:
		return count, &Error{Kind: KindBanned, Client: client, Message: fmt.Sprintf("This ip has been banned: %s", client)}
	case !present:
		g.strikes[client] = count + 1
		return count + 1, &Error{Kind: KindAuthMissing, Client: client, Message: "admin_token missing"}
	case token != g.secret:
		g.strikes[client] = count + 1
		return count + 1, &Error{Kind: KindAuthInvalid, Client: client, Message: "admin_token invalid"}
	}
	return count, nil
}

// AuthorizeRequest resolves the client of r and authorizes it with the
// admin_token header. It returns the resolved client identifier.
func (g *Gate) AuthorizeRequest(r *http.Request) (string, error) {
	client := ClientID(r)
	values, present := r.Header[http.CanonicalHeaderKey(TokenHeader)]
	token := ""
	if present && len(values) > 0 {
		token = values[0]
	}
	return client, g.Authorize(client, token, present)
}

// Strikes returns the number of failed attempts recorded for client.
func (g *Gate) Strikes(client string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.strikes[client]
}

// ClientID returns the last X-Forwarded-For header value when present and the
// peer host otherwise.
func ClientID(r *http.Request) string {
	if values := r.Header.Values(ForwardedForHeader); len(values) > 0 {
		return values[len(values)-1]
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
