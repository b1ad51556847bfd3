package domain

// CollectiveType is the kind of account.
type CollectiveType string

const (
	CollectiveTypeCollective   CollectiveType = "COLLECTIVE"
	CollectiveTypeProject      CollectiveType = "PROJECT"
	CollectiveTypeEvent        CollectiveType = "EVENT"
	CollectiveTypeFund         CollectiveType = "FUND"
	CollectiveTypeOrganization CollectiveType = "ORGANIZATION"
	CollectiveTypeUser         CollectiveType = "USER"
)

// Collective is any account that can send or receive money: hosts, collectives,
// projects, events and individuals.
type Collective struct {
	ID                 string         `json:"id"`
	Type               CollectiveType `json:"type"`
	Name               string         `json:"name"`
	Currency           string         `json:"currency"`
	ParentCollectiveID *string        `json:"parentCollectiveId,omitempty"`
	HostCollectiveID   *string        `json:"hostCollectiveId,omitempty"`
}

// RollupID returns the account that usage is attributed to. Events and projects
// count as their parent.
func (c Collective) RollupID() string {
	if (c.Type == CollectiveTypeEvent || c.Type == CollectiveTypeProject) && c.ParentCollectiveID != nil {
		return *c.ParentCollectiveID
	}
	return c.ID
}
