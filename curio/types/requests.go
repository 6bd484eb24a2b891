package types

type SignUpRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type AskRequest struct {
	Question string `json:"question"`
	Provider string `json:"provider,omitempty"`
}

type TextRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type InterestsRequest struct {
	Interests []string `json:"interests"`
}
