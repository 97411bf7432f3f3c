package transport

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Email string `json:"email"`
}

type AddFileRequest struct {
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
}

type FilePathRequest struct {
	FilePath string `json:"filePath"`
}

type PresignedURLResponse struct {
	URL string `json:"url"`
}
