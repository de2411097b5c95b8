package mastery

import "github.com/google/uuid"

type ModuleMasteryItem struct {
	ModuleID       uuid.UUID `json:"module_id"`
	Module         string    `json:"module"`
	Code           string    `json:"code,omitempty"`
	Mastery        float64   `json:"mastery"`
	ObservedTopics int       `json:"observed_topics"`
}

type ModuleMasteryResponse struct {
	Subject string              `json:"subject"`
	Items   []ModuleMasteryItem `json:"items"`
}
