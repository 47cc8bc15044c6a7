package ai

type modelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type providerModelsResponse struct {
	ProviderID   string      `json:"providerId"`
	ProviderName string      `json:"providerName"`
	ProviderType string      `json:"providerType"`
	Models       []modelInfo `json:"models"`
	Error        string      `json:"error,omitempty"`
}

type assignmentResponse struct {
	ProviderID string `json:"providerId"`
	Model      string `json:"model"`
}

type modelsOverview struct {
	Providers []providerModelsResponse `json:"providers"`
	Summary   *assignmentResponse      `json:"summary"`
	Assist    *assignmentResponse      `json:"assist"`
}
