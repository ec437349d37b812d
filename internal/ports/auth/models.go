package auth

// Claims representa la identidad asociada a un token de sesión.
type Claims struct {
	UserID string
	Email  string
}
