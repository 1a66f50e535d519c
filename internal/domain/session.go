package domain

// Session is the single client credential. IsAuthenticated holds only while
// both tokens are present and the access token has not expired at last check.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	RefreshToken    string `json:"refreshToken"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

func (s Session) HasTokens() bool {
	return s.Token != "" && s.RefreshToken != ""
}

type LoginResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
}

type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
