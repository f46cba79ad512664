package types

import (
	"strings"
	"time"
)

type Credentials struct {
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}
