package models

import "time"

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ClientDetail struct {
	Client
	Dogs []Dog `json:"dogs"`
}

type Dog struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"clientId"`
	Name      string    `json:"name"`
	Breed     *string   `json:"breed"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
