package models

// HeroSlide — слайд главного баннера витрины
type HeroSlide struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	ImageURL     string `json:"image_url"`
	ButtonText   string `json:"button_text"`
	ButtonLink   string `json:"button_link"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}
