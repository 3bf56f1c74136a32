package models

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

type ImagePairListResponse struct {
	ImagePairs []ImagePair `json:"image_pairs"`
}

type GenerateImageResponse struct {
	ImageData    string  `json:"image_data"`
	TextResponse *string `json:"text_response,omitempty"`
}

type IconGenerationResponse struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description,omitempty"`
	ImageData   string `json:"image_data,omitempty"`
}
