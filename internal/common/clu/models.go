package clu

type conversationItem struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Modality      string `json:"modality"`
	Language      string `json:"language"`
	ParticipantID string `json:"participantId"`
}

type analysisInput struct {
	ConversationItem conversationItem `json:"conversationItem"`
}

type parameters struct {
	ProjectName     string `json:"projectName"`
	Verbose         bool   `json:"verbose"`
	DeploymentName  string `json:"deploymentName"`
	StringIndexType string `json:"stringIndexType"`
}

type analyzeRequest struct {
	Kind          string        `json:"kind"`
	AnalysisInput analysisInput `json:"analysisInput"`
	Parameters    parameters    `json:"parameters"`
}

type analyzeResponse struct {
	Result struct {
		Prediction struct {
			TopIntent string   `json:"topIntent"`
			Entities  []Entity `json:"entities"`
		} `json:"prediction"`
	} `json:"result"`
}

// Entity is one span extracted by the language model.
type Entity struct {
	Category        string  `json:"category"`
	Text            string  `json:"text"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty"`
}

// Prediction is the part of the analysis the dialogue consumes.
type Prediction struct {
	TopIntent string
	Entities  []Entity
}
