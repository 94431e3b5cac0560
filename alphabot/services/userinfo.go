package services

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

const userInfoCacheSize = 2048

// UserInfoService caches profile lookups. Profile data changes rarely and
// the transport call is a network round trip, so entries live until evicted.
type UserInfoService struct {
	chat  transport.ChatTransport
	cache *lru.Cache
}

func NewUserInfoService(chat transport.ChatTransport) *UserInfoService {
	cache, _ := lru.New(userInfoCacheSize)
	return &UserInfoService{chat: chat, cache: cache}
}

// Get returns profile data for userID, hitting the transport only on a
// cache miss.
func (s *UserInfoService) Get(ctx context.Context, userID string) (transport.UserInfo, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached.(transport.UserInfo), nil
	}

	infos, err := s.chat.GetUserInfo(ctx, []string{userID})
	if err != nil {
		return transport.UserInfo{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	info, ok := infos[userID]
	if !ok {
		return transport.UserInfo{}, fmt.Errorf("no profile data for %s", userID)
	}
	s.cache.Add(userID, info)
	return info, nil
}

// Name returns the profile display name for userID.
func (s *UserInfoService) Name(ctx context.Context, userID string) (string, error) {
	info, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}
