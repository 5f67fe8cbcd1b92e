package httpdto

type UpdateProfileRequest struct {
	FullName   *string `json:"fullName"`
	BirthYear  *int    `json:"birthYear"`
	Profession *string `json:"profession"`
	City       *string `json:"city"`
	Phone      *string `json:"phone"`
	About      *string `json:"about"`
}
