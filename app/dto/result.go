package dto

import "github.com/vibast-solutions/ms-go-identity/app/entity"

type RegisterResult struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}

type LoginResult struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}
