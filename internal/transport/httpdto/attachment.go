package httpdto

type ShareFileRequest struct {
	FileID  string   `json:"file_id" binding:"required,uuid"`
	UserIDs []string `json:"user_ids" binding:"required,min=1,dive,uuid"`
}

type UpdateFileNameRequest struct {
	NewFileName string `json:"new_file_name" binding:"required,min=1,max=255"`
}

type ListAttachmentsQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
}
