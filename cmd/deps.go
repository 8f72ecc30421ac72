/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/view"
)

// source is everything the commands need from the API.
type source interface {
	view.Source
	Health(ctx context.Context) (api.Health, error)
	Login(ctx context.Context, username, password string) (api.Session, error)
}

// newSource builds the API client. Can be replaced for testing.
var newSource = func() source {
	return api.NewFromConfig()
}
