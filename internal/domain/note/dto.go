package note

type ListResponse struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}
