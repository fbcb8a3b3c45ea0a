package main

import (
	"errors"
	"fmt"

	"github.com/questx-lab/eventreward/internal/model"
	"github.com/questx-lab/eventreward/pkg/authenticator"
	"github.com/urfave/cli/v2"
)

func (s *srv) startToken(cctx *cli.Context) error {
	if s.configs.Auth.TokenSecret == "" {
		return errors.New("auth token secret is not configured")
	}

	engine := authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken.Expiration)

	userID := cctx.String("user")
	token, err := engine.Generate(userID, model.AccessToken{ID: userID, Name: cctx.String("name")})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
