package models

import (
	"encoding/json"
	"time"
)

// Contract is a persisted smart-contract record as returned by the lookup endpoints.
// Field names follow the camelCase shape the UI consumes.
type Contract struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	ABI             json.RawMessage `json:"abi"`
	Bytecode        string          `json:"bytecode"`
	OwnerAddress    string          `json:"ownerAddress"`
	ChainID         *int64          `json:"chainId"`
	ConstructorArgs json.RawMessage `json:"constructorArgs"`
	CreatedAt       time.Time       `json:"createdAt"`
	UserID          *string         `json:"userId"`
}

// UserSummary is the user projection embedded in contract listings.
type UserSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ContractWithUser is a contract joined with its owning user, if any.
type ContractWithUser struct {
	Contract
	User *UserSummary `json:"user"`
}
