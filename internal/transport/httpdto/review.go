package httpdto

type CreateReviewRequest struct {
	ReviewedUser string `json:"reviewedUser"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}
