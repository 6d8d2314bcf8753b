package dto

// Media Upload DTOs
type MediaUploadResponse struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
}

type ThumbnailResponse struct {
	Upload  MediaUploadResponse `json:"upload"`
	Profile UserProfileResponse `json:"profile"`
}
