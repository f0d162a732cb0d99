package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"titlehub/internal/http-api/models"
)

// CodeGenerator issues stateless confirmation codes derived from a user's
// current record state. Nothing is persisted: a code stays valid until it
// expires or the user record changes (the HMAC covers username, email and
// role, so any of those changing invalidates outstanding codes).
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate produces a code of the form <base36 timestamp>-<hmac prefix>.
func (g *CodeGenerator) Generate(user *models.User) string {
	ts := g.now().Unix()
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), g.signature(user, ts))
}

// Verify recomputes the signature against the user's current state and
// checks the embedded timestamp against the TTL.
func (g *CodeGenerator) Verify(user *models.User, code string) bool {
	tsPart, sigPart, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	now := g.now()
	issued := time.Unix(ts, 0)
	if issued.After(now) || now.Sub(issued) > g.ttl {
		return false
	}

	expected := g.signature(user, ts)
	return hmac.Equal([]byte(sigPart), []byte(expected))
}

func (g *CodeGenerator) signature(user *models.User, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%d|%s|%s|%s|%d", user.ID, user.Username, user.Email, user.Role, ts)
	return hex.EncodeToString(mac.Sum(nil))[:32]
}
