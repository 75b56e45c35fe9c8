package core

import (
	"context"
	"net/url"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/opencreds/boostnet/internal/utils"
	"github.com/opencreds/boostnet/internal/validate"
)

func (s *AppService) CreateProfile(ctx context.Context, profile domain.Profile) error {
	if err := validate.ProfileID(profile.ProfileID); err != nil {
		return service.ErrBadRequest
	}
	if err := validate.BoostName(profile.DisplayName); err != nil {
		return service.ErrBadRequest
	}
	if _, err := utils.ParsePublicKeyPem(profile.PublicKeyPem); err != nil {
		return service.ErrBadRequest
	}

	profile.Created = now()
	return mapErr(s.DB.CreateProfile(ctx, profile))
}

func (s *AppService) GetProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	p, err := s.DB.GetProfile(ctx, profileID)
	return p, mapErr(err)
}

func (s *AppService) RegisterSigningAuthority(ctx context.Context, caller, endpoint, name string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return service.ErrBadRequest
	}
	if name == "" || len(name) > validate.MaxNameLen {
		return service.ErrBadRequest
	}
	return mapErr(s.DB.RegisterSigningAuthority(ctx, domain.SigningAuthority{
		ProfileID: caller,
		Endpoint:  endpoint,
		Name:      name,
	}))
}
