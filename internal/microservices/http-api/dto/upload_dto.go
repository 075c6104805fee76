package dto

// DeleteImageRequest: payload for DELETE /upload/image
type DeleteImageRequest struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}

// UploadResult: response data of POST /upload/image
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
