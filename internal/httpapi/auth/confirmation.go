// Package auth holds the confirmation-code scheme for the signup handshake.
//
// A code is not a stored long-term secret: it is an HMAC over the user's
// identity state plus an issue timestamp, so any change to username, email or
// role invalidates outstanding codes, and a TTL bounds their lifetime.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/httpapi/models"
)

const digestLen = 20 // hex chars of the HMAC kept in the code

// CodeGenerator issues and checks state-bound confirmation codes.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration

	// now is swappable in tests
	now func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Make issues a fresh code for the user's current identity state.
func (g *CodeGenerator) Make(user *models.User) string {
	ts := g.now().Unix()
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), g.digest(user, ts))
}

// Check reports whether code was issued by Make for this user's current state
// and has not expired. Comparison is constant-time.
func (g *CodeGenerator) Check(user *models.User, code string) bool {
	tsPart, mac, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if g.ttl > 0 {
		issued := time.Unix(ts, 0)
		if g.now().Sub(issued) > g.ttl || issued.After(g.now().Add(time.Minute)) {
			return false
		}
	}
	want := g.digest(user, ts)
	return subtle.ConstantTimeCompare([]byte(mac), []byte(want)) == 1
}

func (g *CodeGenerator) digest(user *models.User, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s|%s|%s|%s|%d", user.ID, user.Username, user.Email, user.Role, ts)
	sum := hex.EncodeToString(mac.Sum(nil))
	return sum[:digestLen]
}
