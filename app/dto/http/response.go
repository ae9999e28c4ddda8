package http

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ReadyResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}
