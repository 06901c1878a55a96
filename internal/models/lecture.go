package models

type Lecture struct {
	BaseModel
	Title         string `json:"title" gorm:"not null;size:200"`
	Description   string `json:"description" gorm:"type:text"`
	VideoURL      string `json:"video_url" gorm:"size:500"`
	VideoMediaID  string `json:"video_media_id" gorm:"size:500"`
	IsPreviewFree bool   `json:"is_preview_free" gorm:"not null;default:false"`
}

func (Lecture) TableName() string {
	return "lectures"
}
