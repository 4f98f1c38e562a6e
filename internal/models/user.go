package models

// Operator is the single dashboard account configured at startup.
type Operator struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
