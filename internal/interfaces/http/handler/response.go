package handler

// AvailableActionsData lists the lifecycle actions a customer accepts now
type AvailableActionsData struct {
	Identifier string   `json:"identifier"`
	Actions    []string `json:"actions"`
}
