package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService mints short-lived HS256 tokens that let a seated player join
// the voice channel attached to their table.
type VoiceService struct {
	secret string
	issuer string
	domain string
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"
)

const voiceTokenTTL = time.Hour

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
	}
}

// GenerateToken signs a voice access token for the given user and action.
// Join tokens are scoped to one table's channel; login tokens carry no
// channel claim.
func (s *VoiceService) GenerateToken(user, action, tableID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(voiceTokenTTL).Unix(),
		"act": action,
		"jti": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
	}

	switch action {
	case VoiceTokenActionLogin:
	case VoiceTokenActionJoin:
		if tableID == "" {
			return "", fmt.Errorf("table id is required for join tokens")
		}
		claims["chn"] = s.channelName(tableID)
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) channelName(tableID string) string {
	return "table-" + tableID + "@" + s.domain
}
