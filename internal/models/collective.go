package models

// Collective is a row of the collectives table.
type Collective struct {
	CollectiveID       string  `json:"collectiveID"`
	Type               string  `json:"type"`
	Name               string  `json:"name"`
	Currency           string  `json:"currency"`
	ParentCollectiveID *string `json:"parentCollectiveID"`
	HostCollectiveID   *string `json:"hostCollectiveID"`
}
